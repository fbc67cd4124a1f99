package workflow

import (
	"context"
	"time"

	"storygen/internal/persist"
	"storygen/internal/story"
)

// StoryGenerator produces a complete story for a placeholder file.
type StoryGenerator interface {
	Generate(ctx context.Context, file story.PlaceholderFile) (story.Story, error)
}

// StoryResult is the outcome of one story.
type StoryResult struct {
	File     story.PlaceholderFile
	Success  bool
	Story    story.Story
	Warnings []string
	Err      error
	// ErrorKind classifies Err (see services.Kind).
	ErrorKind string
	Paths     persist.Paths
	Upload    persist.UploadResult
	Uploaded  bool
	Skipped   int
	Duration  time.Duration
}

// Title returns the generated title, or "" for failed stories.
func (r StoryResult) Title() string {
	if !r.Success {
		return ""
	}
	return r.Story.Title
}

// Report aggregates a batch run.
type Report struct {
	RunID      string
	ContentDir string
	StartedAt  time.Time
	FinishedAt time.Time
	// Scanned counts every matching file; Filled counts those already done.
	Scanned   int
	Filled    int
	Results   []StoryResult
	Cancelled bool
}

// NothingToDo reports whether the scan found no pending stories.
func (r Report) NothingToDo() bool {
	return len(r.Results) == 0
}

// Succeeded counts successful stories.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Failed counts failed stories.
func (r Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// WarningCount totals warnings over all stories.
func (r Report) WarningCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Warnings)
	}
	return n
}

// Duration returns the wall-clock length of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
