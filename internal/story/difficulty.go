package story

import (
	"fmt"
	"strings"
)

// Difficulty is the reading level of a story.
type Difficulty string

// Supported difficulties.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// WordCountTolerance is the accepted deviation from a difficulty's target word count.
const WordCountTolerance = 50

// ParseDifficulty converts raw into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
}

// Valid reports whether d is one of the supported difficulties.
func (d Difficulty) Valid() bool {
	_, err := ParseDifficulty(string(d))
	return err == nil
}

func (d Difficulty) String() string {
	return string(d)
}

// TargetWordCount returns the passage length requested for d.
func (d Difficulty) TargetWordCount() int {
	switch d {
	case Easy:
		return 200
	case Hard:
		return 500
	default:
		return 350
	}
}

// Score returns the 1..5 difficulty score assigned to questions of level d.
func (d Difficulty) Score() int {
	switch d {
	case Easy:
		return 2
	case Hard:
		return 4
	default:
		return 3
	}
}

// Descriptor returns the reader-level wording used in prompts.
func (d Difficulty) Descriptor() string {
	switch d {
	case Easy:
		return "beginner (A2-B1) readers: short sentences, common vocabulary"
	case Hard:
		return "advanced (C1) readers: complex sentences, nuanced vocabulary"
	default:
		return "intermediate (B1-B2) readers: varied sentences, some topic vocabulary"
	}
}
