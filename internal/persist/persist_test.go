package persist

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storygen/internal/scanner"
	"storygen/internal/story"
	"storygen/internal/testsupport"
)

type fakeUploader struct {
	calls  int
	result UploadResult
	err    error
}

func (f *fakeUploader) UploadStory(_ context.Context, s story.Story) (UploadResult, error) {
	f.calls++
	return f.result, f.err
}

func sampleStory() story.Story {
	s := story.Story{
		Title:      "The Quiet Laboratory",
		Topic:      "Science",
		Difficulty: story.Easy,
		Passage:    "[1] A `quoted` path C:\\temp and ${template} text.\n\n[2] More words here.",
	}
	for i := 0; i < 3; i++ {
		s.Questions = append(s.Questions, story.Question{
			ID:            story.QuestionID(1, i+1),
			Text:          "What happened?",
			Options:       []story.Option{{Text: "a", Rationale: "r"}, {Text: "b", Rationale: "r"}, {Text: "c", Rationale: "r"}, {Text: "d", Rationale: "r"}},
			CorrectAnswer: i,
			QuestionType:  "detail",
		})
	}
	s.Finalize(nil)
	return s
}

func TestEscapeTemplateLiteral(t *testing.T) {
	got := EscapeTemplateLiteral("a `b` \\ ${c} $d")
	want := "a \\`b\\` \\\\ \\${c} $d"
	if got != want {
		t.Fatalf("EscapeTemplateLiteral = %q, want %q", got, want)
	}
}

func TestPersistWritesModuleAndJSON(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WritePlaceholder(t, dir, "easyScienceReadingQuestions.ts", 1, 25)
	s := sampleStory()

	p := New(nil, nil)
	paths, err := p.Persist(context.Background(), story.PlaceholderFile{Path: path}, s)
	if err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}
	if paths.JSON != filepath.Join(dir, "easyScienceReadingQuestions.json") {
		t.Fatalf("unexpected json path %q", paths.JSON)
	}
	if got := paths.Describe(); got != "easyScienceReadingQuestions.ts (+easyScienceReadingQuestions.json)" {
		t.Fatalf("unexpected description %q", got)
	}

	module, err := os.ReadFile(paths.Module)
	if err != nil {
		t.Fatal(err)
	}
	text := string(module)
	for _, want := range []string{
		`export const version = "2.0";`,
		"export const storySummary = {",
		"export const passage = `[1] A \\`quoted\\` path C:\\\\temp and \\${template} text.",
		"export const questions = [",
		"export const readingPassage = passage;",
		"export const readingQuestions = questions;",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("module missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, scanner.DefaultSentinel) {
		t.Fatal("module still contains the placeholder sentinel")
	}

	raw, err := os.ReadFile(paths.JSON)
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if doc.Version != FormatVersion || doc.Passage != s.Passage || len(doc.Questions) != 3 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.StorySummary.QuestionCount != 3 || doc.StorySummary.Title != s.Title {
		t.Fatalf("unexpected summary %+v", doc.StorySummary)
	}

	files, err := scanner.New(nil).Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].State != story.Filled {
		t.Fatalf("persisted file should scan as filled, got %+v", files)
	}
}

func TestPersistMissingDirectory(t *testing.T) {
	p := New(nil, nil)
	_, err := p.Persist(context.Background(), story.PlaceholderFile{Path: filepath.Join(t.TempDir(), "gone", "x.ts")}, sampleStory())
	if err == nil {
		t.Fatal("expected write error")
	}
}

func TestUploadFailureBecomesWarning(t *testing.T) {
	up := &fakeUploader{err: errors.New("network unreachable")}
	p := New(up, nil)
	result := p.Upload(context.Background(), sampleStory())
	if result.Success {
		t.Fatal("expected failed upload")
	}
	if up.calls != 1 {
		t.Fatalf("expected one upload call, got %d", up.calls)
	}
	if got := result.Warning(); got != "upload failed: network unreachable" {
		t.Fatalf("unexpected warning %q", got)
	}
}

func TestUploadRejectedWithoutError(t *testing.T) {
	p := New(&fakeUploader{result: UploadResult{Success: false}}, nil)
	result := p.Upload(context.Background(), sampleStory())
	if result.Success || !strings.HasPrefix(result.Warning(), "upload failed: ") || result.Error == "" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUploadSuccess(t *testing.T) {
	up := &fakeUploader{result: UploadResult{Success: true, QuestionsUploaded: 3, PassageID: "abc"}}
	p := New(up, nil)
	if !p.UploadEnabled() {
		t.Fatal("expected uploads to be enabled")
	}
	result := p.Upload(context.Background(), sampleStory())
	if !result.Success || result.Warning() != "" || result.PassageID != "abc" {
		t.Fatalf("unexpected result %+v", result)
	}
	if New(nil, nil).UploadEnabled() {
		t.Fatal("nil uploader should disable uploads")
	}
}

func TestSummary(t *testing.T) {
	s := sampleStory()
	summary := Summary(s)
	if summary.WordCount != s.WordCount || summary.EstimatedTime != s.EstimatedTime || summary.Difficulty != story.Easy {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
