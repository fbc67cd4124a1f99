package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storygen/internal/config"
	"storygen/internal/logging"
	"storygen/internal/services"
)

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	logger, logPath, err := logging.NewFromConfig(&cfg, started)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	if want := filepath.Join(cfg.Paths.LogDir, "storygen-20260314-092653.log"); logPath != want {
		t.Fatalf("unexpected log path: got %q want %q", logPath, want)
	}
	logger.Info("batch started", logging.String("content_dir", "/tmp/questions"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "batch started") || !strings.Contains(string(content), "content_dir=/tmp/questions") {
		t.Fatalf("unexpected log content %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerPrefixesStoryAndComponent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-story.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "generator").Info("batch generated",
		logging.String(logging.FieldStory, "easyScienceReadingQuestions.ts"),
		logging.Int("batch", 2),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO [easyScienceReadingQuestions.ts] generator: batch generated batch=2") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-xyz")
	ctx = services.WithStory(ctx, "hardHistoryReadingQuestions.ts")
	ctx = services.WithStoryIndex(ctx, 4)
	ctx = services.WithStage(ctx, "generate")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	line := buf.String()
	for _, fragment := range []string{
		"run_id=run-xyz",
		"story=hardHistoryReadingQuestions.ts",
		"story_index=4",
		"stage=generate",
	} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logging.WarnWithContext(logger, "upload failed", "upload_failed", logging.String(logging.FieldImpact, "story not in remote store"))

	line := buf.String()
	if !strings.Contains(line, "event_type=upload_failed") || !strings.Contains(line, "error_hint=") {
		t.Fatalf("expected default fields, got %q", line)
	}
	if !strings.Contains(line, `impact="story not in remote store"`) {
		t.Fatalf("expected caller impact to be preserved, got %q", line)
	}
}

func TestErrorWithContextKeepsCallerHint(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logging.ErrorWithContext(logger, "content directory not found", "content_dir_missing",
		logging.String(logging.FieldErrorHint, "check paths.content_dir"),
	)

	line := buf.String()
	if strings.Count(line, "error_hint=") != 1 || !strings.Contains(line, `error_hint="check paths.content_dir"`) {
		t.Fatalf("expected caller hint only, got %q", line)
	}
	if !strings.Contains(line, "event_type=content_dir_missing") || strings.Contains(line, "impact=") {
		t.Fatalf("unexpected fields in %q", line)
	}
}

func TestConsoleLoggerFlattensGroups(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-group.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.WithGroup("llm").Info("request sent",
		logging.String(logging.FieldRunID, "run-1"),
		slog.Group("usage", logging.Int("tokens", 12)),
		logging.String("model", "demo model"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, `request sent llm.run_id=run-1 llm.usage.tokens=12 llm.model="demo model"`) {
		t.Fatalf("unexpected console line %q", line)
	}
}
