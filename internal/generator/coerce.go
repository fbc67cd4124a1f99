package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"storygen/internal/story"
)

const (
	defaultHint               = "Re-read the paragraph the question points to."
	defaultParagraphReference = "[1]"
	defaultCorrectRationale   = "This option is supported by the passage."
	defaultWrongRationale     = "This option is not supported by the passage."
)

type rawQuestion struct {
	QuestionNumber     int          `json:"questionNumber"`
	Text               string       `json:"text"`
	Options            []rawOption  `json:"options"`
	CorrectAnswer      answerIndex  `json:"correctAnswer"`
	Explanation        string       `json:"explanation"`
	Hint               string       `json:"hint"`
	ParagraphReference flexibleText `json:"paragraphReference"`
}

// rawOption accepts either {"text", "rationale"} objects or bare strings.
type rawOption struct {
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
}

func (o *rawOption) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &o.Text)
	}
	type plain rawOption
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = rawOption(p)
	return nil
}

// answerIndex accepts 0-based integers, numeric strings, and option letters.
type answerIndex struct {
	value int
	set   bool
}

func (a *answerIndex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		a.value, a.set = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("correctAnswer: %w", err)
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		a.value, a.set = n, true
		return nil
	}
	if len(s) == 1 {
		letter := strings.ToUpper(s)[0]
		if letter >= 'A' && letter <= 'D' {
			a.value, a.set = int(letter-'A'), true
			return nil
		}
	}
	return fmt.Errorf("correctAnswer: unrecognised value %q", s)
}

// flexibleText accepts strings and numbers.
type flexibleText string

func (f *flexibleText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleText(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	*f = flexibleText(string(data))
	return nil
}

// coerce checks the required fields of a decoded question and fills optional
// ones with defaults.
func coerce(raw rawQuestion, number int) (story.Question, error) {
	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return story.Question{}, fmt.Errorf("question %d: missing text", number)
	}
	if len(raw.Options) != story.OptionsPerQuestion {
		return story.Question{}, fmt.Errorf("question %d: expected %d options, got %d", number, story.OptionsPerQuestion, len(raw.Options))
	}
	if !raw.CorrectAnswer.set {
		return story.Question{}, fmt.Errorf("question %d: missing correctAnswer", number)
	}
	correct := raw.CorrectAnswer.value
	if correct < 0 || correct >= story.OptionsPerQuestion {
		return story.Question{}, fmt.Errorf("question %d: correctAnswer %d out of range", number, correct)
	}

	options := make([]story.Option, len(raw.Options))
	for i, opt := range raw.Options {
		optText := strings.TrimSpace(opt.Text)
		if optText == "" {
			return story.Question{}, fmt.Errorf("question %d: option %d has no text", number, i+1)
		}
		rationale := strings.TrimSpace(opt.Rationale)
		if rationale == "" {
			rationale = defaultWrongRationale
			if i == correct {
				rationale = defaultCorrectRationale
			}
		}
		options[i] = story.Option{Text: optText, Rationale: rationale}
	}

	explanation := strings.TrimSpace(raw.Explanation)
	if explanation == "" {
		explanation = fmt.Sprintf("Option %c is correct. %s", 'A'+correct, options[correct].Rationale)
	}
	hint := strings.TrimSpace(raw.Hint)
	if hint == "" {
		hint = defaultHint
	}
	reference := normalizeParagraphReference(string(raw.ParagraphReference))

	return story.Question{
		Text:               text,
		Options:            options,
		CorrectAnswer:      correct,
		Explanation:        explanation,
		Hint:               hint,
		ParagraphReference: reference,
	}, nil
}

func normalizeParagraphReference(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultParagraphReference
	}
	if _, err := strconv.Atoi(value); err == nil {
		return "[" + value + "]"
	}
	return value
}
