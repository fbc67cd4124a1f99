package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// FakeLLM records prompts and answers them with Respond.
type FakeLLM struct {
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// Generate implements llm.Generator.
func (f *FakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.Respond == nil {
		return "", fmt.Errorf("fake llm: no responder")
	}
	return f.Respond(prompt)
}

// Calls returns the number of prompts received.
func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Prompts returns a copy of the prompts received so far.
func (f *FakeLLM) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// NewStoryLLM returns a fake that answers title, passage, and question
// prompts with well-formed content.
func NewStoryLLM() *FakeLLM {
	return &FakeLLM{Respond: StoryResponse}
}

var (
	wordTargetPattern     = regexp.MustCompile(`about (\d+) words`)
	questionNumberPattern = regexp.MustCompile(`(?m)^Question (\d+) \[`)
)

// StoryResponse produces a plausible response for any generator prompt.
func StoryResponse(prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Reply with the title only"):
		return `"The Quiet Laboratory"`, nil
	case strings.Contains(prompt, "Reply with the passage only"):
		words := 350
		if m := wordTargetPattern.FindStringSubmatch(prompt); m != nil {
			words, _ = strconv.Atoi(m[1])
		}
		return Passage(words, 4), nil
	case strings.Contains(prompt, `"questionNumber"`):
		var numbers []int
		for _, m := range questionNumberPattern.FindAllStringSubmatch(prompt, -1) {
			n, _ := strconv.Atoi(m[1])
			numbers = append(numbers, n)
		}
		return "```json\n" + QuestionsJSON(numbers) + "\n```", nil
	default:
		return "", fmt.Errorf("fake llm: unrecognised prompt")
	}
}

var passageVocabulary = []string{
	"scientists", "measured", "the", "river", "water", "every", "morning", "and",
	"recorded", "careful", "notes", "about", "temperature", "light", "small", "fish",
}

// Passage returns a passage of exactly words words split across paragraphs
// numbered [1]..[paragraphs].
func Passage(words, paragraphs int) string {
	if paragraphs < 1 {
		paragraphs = 1
	}
	per := words / paragraphs
	var b strings.Builder
	written := 0
	for p := 1; p <= paragraphs; p++ {
		if p > 1 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d]", p)
		count := per
		if p == paragraphs {
			count = words - written
		}
		for i := 0; i < count; i++ {
			b.WriteString(" ")
			b.WriteString(passageVocabulary[(written+i)%len(passageVocabulary)])
		}
		written += count
	}
	return b.String()
}

// QuestionsJSON renders a JSON array of well-formed questions for numbers.
// The correct answer of question n is option n%4.
func QuestionsJSON(numbers []int) string {
	type option struct {
		Text      string `json:"text"`
		Rationale string `json:"rationale"`
	}
	type question struct {
		QuestionNumber     int      `json:"questionNumber"`
		Text               string   `json:"text"`
		Options            []option `json:"options"`
		CorrectAnswer      int      `json:"correctAnswer"`
		Explanation        string   `json:"explanation"`
		Hint               string   `json:"hint"`
		ParagraphReference string   `json:"paragraphReference"`
	}
	out := make([]question, 0, len(numbers))
	for _, n := range numbers {
		correct := n % 4
		q := question{
			QuestionNumber:     n,
			Text:               fmt.Sprintf("According to the passage, what happened in observation number %d?", n),
			CorrectAnswer:      correct,
			Explanation:        fmt.Sprintf("Option %c is correct because paragraph [1] says so.", 'A'+correct),
			Hint:               "Look at the first paragraph.",
			ParagraphReference: "[1]",
		}
		for i := 0; i < 4; i++ {
			rationale := "The passage does not say this."
			if i == correct {
				rationale = "The passage states this directly."
			}
			q.Options = append(q.Options, option{
				Text:      fmt.Sprintf("Observation %d outcome %c", n, 'A'+i),
				Rationale: rationale,
			})
		}
		out = append(out, q)
	}
	encoded, _ := json.MarshalIndent(out, "", "  ")
	return string(encoded)
}
