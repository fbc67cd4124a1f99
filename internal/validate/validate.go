// Package validate runs advisory quality checks over a generated story.
// Findings are returned as human-readable warnings and never block
// persistence.
package validate

import (
	"fmt"
	"strings"

	"storygen/internal/story"
)

// Validator checks stories against an expected question count.
type Validator struct {
	questions int
}

// New returns a Validator expecting questions questions per story.
func New(questions int) Validator {
	if questions <= 0 {
		questions = story.QuestionsPerStory
	}
	return Validator{questions: questions}
}

// Validate checks a story with the default question count.
func Validate(passage string, questions []story.Question, expectedWordCount int, title string) []string {
	return New(story.QuestionsPerStory).Validate(passage, questions, expectedWordCount, title)
}

// Story checks s against its difficulty's target word count.
func (v Validator) Story(s story.Story) []string {
	return v.Validate(s.Passage, s.Questions, s.Difficulty.TargetWordCount(), s.Title)
}

// Validate returns one warning per failed story-level check and one per
// offending question and check. Question warnings name the 1-based position.
func (v Validator) Validate(passage string, questions []story.Question, expectedWordCount int, title string) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if len(strings.TrimSpace(title)) < 3 {
		warn("Title is missing or shorter than 3 characters")
	}
	words := story.CountWords(passage)
	if diff := words - expectedWordCount; diff > story.WordCountTolerance || diff < -story.WordCountTolerance {
		warn("Passage has %d words, expected %d±%d", words, expectedWordCount, story.WordCountTolerance)
	}
	if !strings.Contains(passage, "[1]") {
		warn("Passage is missing the [1] paragraph marker")
	}
	if len(questions) != v.questions {
		warn("Expected %d questions, found %d", v.questions, len(questions))
	}

	seen := make(map[string]int, len(questions))
	for i, q := range questions {
		pos := i + 1
		key := strings.ToLower(strings.Join(strings.Fields(q.Text), " "))
		if key != "" {
			if first, dup := seen[key]; dup {
				warn("Question %d: duplicate text of question %d", pos, first)
			} else {
				seen[key] = pos
			}
		}
		for _, problem := range questionProblems(q) {
			warn("Question %d: %s", pos, problem)
		}
	}
	return warnings
}

func questionProblems(q story.Question) []string {
	var problems []string
	if strings.TrimSpace(q.Text) == "" {
		problems = append(problems, "missing text")
	}
	if !story.ValidQuestionID(q.ID) {
		problems = append(problems, fmt.Sprintf("invalid questionId %q", q.ID))
	}
	if len(q.Options) != story.OptionsPerQuestion {
		problems = append(problems, fmt.Sprintf("expected %d options, found %d", story.OptionsPerQuestion, len(q.Options)))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			problems = append(problems, fmt.Sprintf("option %c has no text", 'A'+i))
		}
		if strings.TrimSpace(opt.Rationale) == "" {
			problems = append(problems, fmt.Sprintf("option %c has no rationale", 'A'+i))
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer > 3 {
		problems = append(problems, fmt.Sprintf("correctAnswer %d outside [0,3]", q.CorrectAnswer))
	}
	if strings.TrimSpace(q.Hint) == "" {
		problems = append(problems, "missing hint")
	}
	if strings.TrimSpace(q.ParagraphReference) == "" {
		problems = append(problems, "missing paragraphReference")
	}
	if len(q.Skills) == 0 {
		problems = append(problems, "missing skills")
	}
	if q.DifficultyScore < 1 || q.DifficultyScore > 5 {
		problems = append(problems, fmt.Sprintf("difficultyScore %d outside [1,5]", q.DifficultyScore))
	}
	return problems
}
