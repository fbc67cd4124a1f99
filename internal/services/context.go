package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	storyKey      contextKey = "story"
	storyIndexKey contextKey = "story_index"
	stageKey      contextKey = "stage"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStory annotates context with the story file name.
func WithStory(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, storyKey, name)
}

// StoryFromContext returns the story file name if present.
func StoryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(storyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStoryIndex annotates context with the 1-based story index.
func WithStoryIndex(ctx context.Context, index int) context.Context {
	if index <= 0 {
		return ctx
	}
	return context.WithValue(ctx, storyIndexKey, index)
}

// StoryIndexFromContext returns the story index if present.
func StoryIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(storyIndexKey).(int)
	return v, ok && v > 0
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
