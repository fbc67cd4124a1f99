package scanner

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"storygen/internal/story"
	"storygen/internal/testsupport"
)

func newTestScanner(buf *bytes.Buffer) *Scanner {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger)
}

func TestScanOrdersAndIndexesFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePlaceholder(t, dir, "mediumHistoryReadingQuestions.ts", 0, 25)
	testsupport.WritePlaceholder(t, dir, "easyScienceReadingQuestions.ts", 0, 25)
	testsupport.WritePlaceholder(t, dir, "hardArtReadingQuestions.tsx", 0, 25)
	testsupport.WriteContent(t, filepath.Join(dir, "notes.ts"), "PLACEHOLDER_CONTENT")
	testsupport.WriteContent(t, filepath.Join(dir, "expertScienceReadingQuestions.ts"), "PLACEHOLDER_CONTENT")
	testsupport.WriteContent(t, filepath.Join(dir, "easyscienceReadingQuestions.ts"), "PLACEHOLDER_CONTENT")

	var logs bytes.Buffer
	files, err := newTestScanner(&logs).Scan(dir)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 matching files, got %d", len(files))
	}
	want := []struct {
		topic      string
		difficulty story.Difficulty
	}{
		{"Science", story.Easy},
		{"Art", story.Hard},
		{"History", story.Medium},
	}
	for i, f := range files {
		if f.StoryIndex != i+1 {
			t.Fatalf("file %d has story index %d", i, f.StoryIndex)
		}
		if f.Topic != want[i].topic || f.Difficulty != want[i].difficulty {
			t.Fatalf("file %d = %s/%s, want %s/%s", i, f.Difficulty, f.Topic, want[i].difficulty, want[i].topic)
		}
		if !f.HasPlaceholders() {
			t.Fatalf("file %d should be pending", i)
		}
	}
}

func TestScanSkipsFilledFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePlaceholder(t, dir, "easyScienceReadingQuestions.ts", 1, 25)
	testsupport.WriteContent(t, filepath.Join(dir, "hardSpaceReadingQuestions.ts"), "export const version = \"2.0\";\n")

	var logs bytes.Buffer
	files, err := newTestScanner(&logs).Scan(dir)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("filled files are still reported, expected 2 got %d", len(files))
	}
	if files[1].State != story.Filled || files[1].HasPlaceholders() {
		t.Fatalf("expected second file to be filled, got %v", files[1].State)
	}
	pending := Pending(files)
	if len(pending) != 1 || pending[0].Topic != "Science" {
		t.Fatalf("unexpected pending list %+v", pending)
	}
	if !strings.Contains(logs.String(), "content file already filled") {
		t.Fatalf("expected filled file to be logged:\n%s", logs.String())
	}
}

func TestScanMissingDirectory(t *testing.T) {
	var logs bytes.Buffer
	files, err := newTestScanner(&logs).Scan(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing directory should not be fatal: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %d", len(files))
	}
	if !strings.Contains(logs.String(), "content_dir_missing") {
		t.Fatalf("expected logged error:\n%s", logs.String())
	}
}

func TestScanCustomSentinel(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteContent(t, filepath.Join(dir, "easyScienceReadingQuestions.js"), "TODO_STORY")
	files, err := New(nil, WithSentinel("TODO_STORY")).Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || !files[0].HasPlaceholders() {
		t.Fatalf("expected pending file with custom sentinel, got %+v", files)
	}
}

func TestLoadSkeletonFromFile(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WritePlaceholder(t, dir, "easyScienceReadingQuestions.ts", 3, 25)

	var logs bytes.Buffer
	skeletons, reconstructed := newTestScanner(&logs).LoadSkeleton(path, 3)
	if reconstructed {
		t.Fatalf("expected skeleton from file, logs:\n%s", logs.String())
	}
	if len(skeletons) != 25 || skeletons[0].ID != "S3_Q1" || skeletons[24].ID != "S3_Q25" {
		t.Fatalf("unexpected skeletons %+v", skeletons)
	}
	if skeletons[0].QuestionType != story.DefaultCatalog().At(0).Type {
		t.Fatalf("unexpected type %q", skeletons[0].QuestionType)
	}
}

func TestLoadSkeletonReconstructsUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteContent(t, filepath.Join(dir, "easyScienceReadingQuestions.ts"),
		"export const passage = `PLACEHOLDER_CONTENT`;\nexport const questions = buildQuestions();\n")

	var logs bytes.Buffer
	skeletons, reconstructed := newTestScanner(&logs).LoadSkeleton(path, 4)
	if !reconstructed {
		t.Fatal("expected reconstructed skeleton")
	}
	if !strings.Contains(logs.String(), "skeleton_reconstructed") {
		t.Fatalf("expected skeleton_reconstructed event:\n%s", logs.String())
	}
	if len(skeletons) != story.QuestionsPerStory {
		t.Fatalf("expected %d skeletons, got %d", story.QuestionsPerStory, len(skeletons))
	}
	for i, s := range skeletons {
		if s.ID != story.QuestionID(4, i+1) {
			t.Fatalf("skeleton %d id = %q", i, s.ID)
		}
	}
}

func TestLoadSkeletonPadsShortArrays(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WritePlaceholder(t, dir, "easyScienceReadingQuestions.ts", 2, 3)
	skeletons, reconstructed := New(nil).LoadSkeleton(path, 2)
	if reconstructed {
		t.Fatal("short array should be padded, not reconstructed")
	}
	if len(skeletons) != 25 || skeletons[3].ID != "S2_Q4" || skeletons[3].QuestionType == "" {
		t.Fatalf("unexpected padding %+v", skeletons[3])
	}
}

func TestLoadSkeletonMissingFile(t *testing.T) {
	_, reconstructed := New(nil).LoadSkeleton(filepath.Join(t.TempDir(), "gone.ts"), 1)
	if !reconstructed {
		t.Fatal("missing file should fall back to reconstruction")
	}
}

func TestScanPopulatesReconstructedFlag(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteContent(t, filepath.Join(dir, "easyScienceReadingQuestions.ts"), "PLACEHOLDER_CONTENT\nexport const questions = [];\n")
	files, err := New(nil).Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !files[0].Reconstructed || len(files[0].Skeletons) != 25 {
		t.Fatalf("empty questions export should be reconstructed: %+v", files[0])
	}
}

func TestParseQuestionsExportRelaxedSyntax(t *testing.T) {
	source := `import type { ReadingQuestion } from "./types";

export const questions: ReadingQuestion[] = [
  { questionId: "S1_Q1", questionType: "main_idea", text: "[draft] what about ] this?" },
  { questionId: 'S1_Q2', questionType: "tone", },
];
`
	// Single-quoted values are not JSON, so the relaxed pass still fails.
	if _, err := ParseQuestionsExport(source); err == nil {
		t.Fatal("expected single-quoted strings to be rejected")
	}

	source = strings.Replace(source, `'S1_Q2'`, `"S1_Q2"`, 1)
	skeletons, err := ParseQuestionsExport(source)
	if err != nil {
		t.Fatalf("ParseQuestionsExport returned error: %v", err)
	}
	if len(skeletons) != 2 || skeletons[1].QuestionType != "tone" || skeletons[0].ID != "S1_Q1" {
		t.Fatalf("unexpected skeletons %+v", skeletons)
	}
}

func TestParseFileName(t *testing.T) {
	d, topic, ok := ParseFileName("hardClimateChangeReadingQuestions.ts")
	if !ok || d != story.Hard || topic != "ClimateChange" {
		t.Fatalf("got %v %q %v", d, topic, ok)
	}
	if _, _, ok := ParseFileName("hardClimateChangeReadingQuestions.go"); ok {
		t.Fatal("unexpected match for .go extension")
	}
}
