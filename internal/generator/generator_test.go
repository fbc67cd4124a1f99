package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storygen/internal/services"
	"storygen/internal/story"
	"storygen/internal/testsupport"
)

func skeletons(storyIndex, n int) []story.Skeleton {
	out := make([]story.Skeleton, n)
	for i := range out {
		out[i] = story.Skeleton{ID: story.QuestionID(storyIndex, i+1), QuestionType: story.DefaultCatalog().At(i).Type}
	}
	return out
}

func TestGenerateProducesCompleteStory(t *testing.T) {
	fake := testsupport.NewStoryLLM()
	var sleeps []time.Duration
	gen := New(fake, nil,
		WithBatchDelay(time.Second),
		WithSleeper(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)
	file := story.PlaceholderFile{
		Topic:      "Science",
		Difficulty: story.Easy,
		StoryIndex: 3,
		Skeletons:  skeletons(3, 25),
	}

	s, err := gen.Generate(context.Background(), file)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if s.Title != "The Quiet Laboratory" {
		t.Fatalf("unexpected title %q", s.Title)
	}
	if !strings.Contains(s.Passage, "[1]") {
		t.Fatal("passage missing paragraph marker")
	}
	if s.WordCount != 200 {
		t.Fatalf("word count = %d, want 200", s.WordCount)
	}
	if len(s.Questions) != 25 {
		t.Fatalf("expected 25 questions, got %d", len(s.Questions))
	}
	for i, q := range s.Questions {
		if q.ID != story.QuestionID(3, i+1) {
			t.Fatalf("question %d id = %q", i+1, q.ID)
		}
		if q.CorrectAnswer != (i+1)%4 {
			t.Fatalf("question %d correct = %d", i+1, q.CorrectAnswer)
		}
		if q.DifficultyScore != 2 || q.Metadata.Position != i+1 {
			t.Fatalf("question %d derived fields not set: %+v", i+1, q)
		}
	}
	// 1 title + 1 passage + 5 batches.
	if fake.Calls() != 7 {
		t.Fatalf("expected 7 prompts, got %d", fake.Calls())
	}
	if len(sleeps) != 4 {
		t.Fatalf("expected 4 inter-batch sleeps, got %v", sleeps)
	}
}

func TestGenerateQuestionsBatchesPrompts(t *testing.T) {
	fake := testsupport.NewStoryLLM()
	gen := New(fake, nil, WithBatchSize(5), WithBatchDelay(0))
	_, err := gen.GenerateQuestions(context.Background(), testsupport.Passage(350, 4), "Science", story.Medium, "T", skeletons(1, 12))
	if err != nil {
		t.Fatalf("GenerateQuestions returned error: %v", err)
	}
	prompts := fake.Prompts()
	if len(prompts) != 3 {
		t.Fatalf("expected 3 batch prompts, got %d", len(prompts))
	}
	if !strings.Contains(prompts[2], "Question 11 [") || !strings.Contains(prompts[2], "Question 12 [") {
		t.Fatalf("last batch should cover questions 11 and 12:\n%s", prompts[2])
	}
	if strings.Contains(prompts[2], "Question 10 [") {
		t.Fatal("last batch should not repeat question 10")
	}
}

func TestGenerateQuestionsParseFailureAbortsStory(t *testing.T) {
	calls := 0
	fake := &testsupport.FakeLLM{Respond: func(prompt string) (string, error) {
		calls++
		if calls == 2 {
			return "I'm sorry, I cannot help with that.", nil
		}
		return testsupport.StoryResponse(prompt)
	}}
	gen := New(fake, nil, WithBatchDelay(0))
	_, err := gen.GenerateQuestions(context.Background(), testsupport.Passage(200, 2), "Science", story.Easy, "T", skeletons(1, 25))
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected generation to stop after the failing batch, got %d calls", calls)
	}
}

func TestGenerateQuestionsSchemaFailure(t *testing.T) {
	fake := &testsupport.FakeLLM{Respond: func(string) (string, error) {
		return `[{"questionNumber":1,"text":"Q?","options":["a","b","c"],"correctAnswer":0}]`, nil
	}}
	gen := New(fake, nil, WithBatchSize(1), WithBatchDelay(0))
	_, err := gen.GenerateQuestions(context.Background(), "[1] text", "Science", story.Easy, "T", skeletons(1, 1))
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse for three options, got %v", err)
	}
}

func TestGenerateTitleTransientFailure(t *testing.T) {
	fake := &testsupport.FakeLLM{Respond: func(string) (string, error) {
		return "", errors.New("http 503")
	}}
	gen := New(fake, nil)
	_, err := gen.GenerateTitle(context.Background(), "Science", story.Easy)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestParseBatchCoercesOptionalFields(t *testing.T) {
	raw := `Here you go:
[
  {"questionNumber": 7, "text": "What is the main idea?", "options": [
    {"text": "Rivers", "rationale": ""}, "Lakes", {"text": "Seas"}, {"text": "Ponds"}
  ], "correctAnswer": "B", "paragraphReference": 2}
]`
	batch := []batchItem{{number: 7, skeleton: story.Skeleton{ID: "S1_Q7"}, kind: story.DefaultCatalog().Lookup("main_idea")}}
	got, err := parseBatch(raw, batch)
	if err != nil {
		t.Fatalf("parseBatch returned error: %v", err)
	}
	q := got[0]
	if q.ID != "S1_Q7" || q.QuestionType != "main_idea" {
		t.Fatalf("unexpected identity %+v", q)
	}
	if q.CorrectAnswer != 1 {
		t.Fatalf("letter answer should map to index 1, got %d", q.CorrectAnswer)
	}
	if q.Options[1].Text != "Lakes" || q.Options[1].Rationale != defaultCorrectRationale {
		t.Fatalf("unexpected option %+v", q.Options[1])
	}
	if q.Options[0].Rationale != defaultWrongRationale {
		t.Fatalf("unexpected rationale %q", q.Options[0].Rationale)
	}
	if q.Hint != defaultHint || q.ParagraphReference != "[2]" {
		t.Fatalf("unexpected defaults hint=%q ref=%q", q.Hint, q.ParagraphReference)
	}
	if !strings.HasPrefix(q.Explanation, "Option B is correct") {
		t.Fatalf("unexpected explanation %q", q.Explanation)
	}
}

func TestParseBatchRejectsOutOfRangeAnswer(t *testing.T) {
	raw := `[{"questionNumber":1,"text":"Q?","options":["a","b","c","d"],"correctAnswer":4}]`
	batch := []batchItem{{number: 1, skeleton: story.Skeleton{ID: "S1_Q1"}, kind: story.DefaultCatalog().Lookup("detail")}}
	if _, err := parseBatch(raw, batch); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestParseBatchFallsBackToPosition(t *testing.T) {
	raw := `[{"text":"First?","options":["a","b","c","d"],"correctAnswer":0},{"text":"Second?","options":["a","b","c","d"],"correctAnswer":1}]`
	kind := story.DefaultCatalog().Lookup("detail")
	batch := []batchItem{
		{number: 6, skeleton: story.Skeleton{ID: "S1_Q6"}, kind: kind},
		{number: 7, skeleton: story.Skeleton{ID: "S1_Q7"}, kind: kind},
	}
	got, err := parseBatch(raw, batch)
	if err != nil {
		t.Fatalf("parseBatch returned error: %v", err)
	}
	if got[0].Text != "First?" || got[1].ID != "S1_Q7" {
		t.Fatalf("unexpected positional mapping %+v", got)
	}
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		`"The Quiet River"`:             "The Quiet River",
		"'Echoes'":                      "Echoes",
		"“Curly Quotes”":                "Curly Quotes",
		"Title: \"Labelled\"":           "Labelled",
		"**Bold Title**\n\nExplanation": "Bold Title",
		"  Plain  ":                     "Plain",
		`"`:                             `"`,
	}
	for in, want := range cases {
		if got := CleanTitle(in); got != want {
			t.Fatalf("CleanTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPromptsCarryContract(t *testing.T) {
	p := passagePrompt("ClimateChange", story.Hard, "Melting Points")
	if !strings.Contains(p, "about 500 words") || !strings.Contains(p, "[1]") || !strings.Contains(p, "Climate Change") {
		t.Fatalf("passage prompt missing requirements:\n%s", p)
	}
	kind := story.DefaultCatalog().Lookup("vocabulary")
	q := questionsPrompt("[1] text", "Science", story.Easy, "T", []batchItem{{number: 4, kind: kind}})
	for _, want := range []string{`"questionNumber"`, `"paragraphReference"`, "Question 4 [vocabulary]", "vocabulary-in-context"} {
		if !strings.Contains(q, want) {
			t.Fatalf("questions prompt missing %q:\n%s", want, q)
		}
	}
}
