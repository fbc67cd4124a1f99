package story

import (
	"strings"
	"testing"
)

func TestDifficultyHelpers(t *testing.T) {
	cases := []struct {
		raw       string
		want      Difficulty
		wordCount int
		score     int
	}{
		{"easy", Easy, 200, 2},
		{"Medium", Medium, 350, 3},
		{" hard ", Hard, 500, 4},
	}
	for _, tc := range cases {
		got, err := ParseDifficulty(tc.raw)
		if err != nil {
			t.Fatalf("ParseDifficulty(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDifficulty(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		if got.TargetWordCount() != tc.wordCount {
			t.Fatalf("%s word count = %d, want %d", got, got.TargetWordCount(), tc.wordCount)
		}
		if got.Score() != tc.score {
			t.Fatalf("%s score = %d, want %d", got, got.Score(), tc.score)
		}
	}
	if _, err := ParseDifficulty("expert"); err == nil {
		t.Fatal("expected error for unknown difficulty")
	}
}

func TestCountWordsIgnoresMarkers(t *testing.T) {
	passage := "[1] The river runs.\n\n[2] It is cold today."
	if got := CountWords(passage); got != 7 {
		t.Fatalf("CountWords = %d, want 7", got)
	}
}

func TestEstimatedTime(t *testing.T) {
	cases := []struct {
		words, questions, want int
	}{
		{200, 25, 26},
		{201, 25, 27},
		{500, 25, 28},
		{0, 0, 1},
		{50, 0, 1},
	}
	for _, tc := range cases {
		if got := EstimatedTime(tc.words, tc.questions); got != tc.want {
			t.Fatalf("EstimatedTime(%d, %d) = %d, want %d", tc.words, tc.questions, got, tc.want)
		}
	}
}

func TestQuestionID(t *testing.T) {
	id := QuestionID(3, 12)
	if id != "S3_Q12" {
		t.Fatalf("QuestionID = %q", id)
	}
	if !ValidQuestionID(id) {
		t.Fatalf("expected %q to be valid", id)
	}
	for _, bad := range []string{"Q1", "S3-Q1", "s3_q1", "S3_Q", ""} {
		if ValidQuestionID(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestDisplayTopic(t *testing.T) {
	cases := map[string]string{
		"Science":       "Science",
		"ClimateChange": "Climate Change",
		"SpaceTravel":   "Space Travel",
	}
	for in, want := range cases {
		if got := DisplayTopic(in); got != want {
			t.Fatalf("DisplayTopic(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFinalizeDerivesQuestionFields(t *testing.T) {
	s := Story{
		Title:      "The Quiet River",
		Topic:      "Science",
		Difficulty: Hard,
		Passage:    "[1] " + strings.Repeat("word ", 400),
		Questions: []Question{
			{ID: "S1_Q1", QuestionType: "inference"},
			{ID: "S1_Q2", QuestionType: "made_up"},
		},
	}
	s.Finalize(nil)
	if s.WordCount != 400 {
		t.Fatalf("word count = %d", s.WordCount)
	}
	if s.EstimatedTime != 4 {
		t.Fatalf("estimated time = %d", s.EstimatedTime)
	}
	first := s.Questions[0]
	if first.DifficultyScore != 4 || first.Difficulty != Hard {
		t.Fatalf("unexpected difficulty fields %+v", first)
	}
	if len(first.Skills) == 0 || first.Skills[0] != "inference" {
		t.Fatalf("unexpected skills %v", first.Skills)
	}
	if first.Metadata.Position != 1 || first.Metadata.TotalQuestions != 2 || first.Metadata.Topic != "Science" {
		t.Fatalf("unexpected metadata %+v", first.Metadata)
	}
	if s.Questions[1].QuestionType != DefaultQuestionType {
		t.Fatalf("unknown type should fall back to %q, got %q", DefaultQuestionType, s.Questions[1].QuestionType)
	}

	summary := s.Summary()
	if summary.QuestionCount != 2 || summary.WordCount != 400 || summary.Title != "The Quiet River" {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()
	types := c.Types()
	if len(types) != 8 {
		t.Fatalf("expected 8 catalog types, got %v", types)
	}
	if !c.Known("main-idea") {
		t.Fatal("expected hyphenated type to normalize")
	}
	if c.Lookup("nonsense").Type != DefaultQuestionType {
		t.Fatal("expected fallback to detail")
	}
	if c.At(len(types)).Type != types[0] {
		t.Fatal("expected At to cycle")
	}
	if _, err := LoadCatalog([]byte("- type: tone\n  skills: [x]\n")); err == nil {
		t.Fatal("expected error when detail entry is missing")
	}
}

func TestFileState(t *testing.T) {
	f := PlaceholderFile{Topic: "Science", Difficulty: Easy, State: Pending}
	if !f.HasPlaceholders() {
		t.Fatal("pending file should report placeholders")
	}
	f.State = Filled
	if f.HasPlaceholders() {
		t.Fatal("filled file should not report placeholders")
	}
	if f.Label() != "easyScience" {
		t.Fatalf("label = %q", f.Label())
	}
}
