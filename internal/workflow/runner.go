package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"storygen/internal/config"
	"storygen/internal/logging"
	"storygen/internal/persist"
	"storygen/internal/scanner"
	"storygen/internal/services"
	"storygen/internal/shuffle"
	"storygen/internal/store"
	"storygen/internal/story"
	"storygen/internal/validate"
)

// Dependencies are the pipeline components a Runner drives.
type Dependencies struct {
	Scanner   *scanner.Scanner
	Generator StoryGenerator
	// Shuffler is optional; nil keeps options in generated order.
	Shuffler  *shuffle.Shuffler
	Validator validate.Validator
	Persister *persist.Persister
	// Ledger is optional; nil skips run bookkeeping.
	Ledger *store.Ledger
}

// Runner executes batch runs.
type Runner struct {
	cfg      *config.Config
	deps     Dependencies
	logger   *slog.Logger
	sleeper  func(time.Duration)
	now      func() time.Time
	newRunID func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSleeper overrides how the pause between stories is performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(r *Runner) {
		r.sleeper = sleeper
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRunID fixes the run identifier instead of drawing a UUID.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.newRunID = func() string { return id }
		}
	}
}

// NewRunner constructs a Runner. Scanner, Generator, and Persister are required.
func NewRunner(cfg *config.Config, deps Dependencies, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("workflow: config is required")
	}
	if deps.Scanner == nil || deps.Generator == nil || deps.Persister == nil {
		return nil, errors.New("workflow: scanner, generator, and persister are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Validator == (validate.Validator{}) {
		deps.Validator = validate.New(cfg.Generation.QuestionsPerStory)
	}
	r := &Runner{
		cfg:      cfg,
		deps:     deps,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run processes every pending story in the content directory. Per-story
// failures are recorded in the report and never abort the batch. The error
// is non-nil only when the run could not start or ctx was cancelled.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "workflow", "prepare", "Failed to create working directories", err)
	}
	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "workflow", "lock", "Failed to acquire run lock", err)
	}
	if !locked {
		return Report{}, services.Wrap(services.ErrConfiguration, "workflow", "lock",
			fmt.Sprintf("Another storygen run holds %s", r.cfg.LockPath()), nil)
	}
	defer func() { _ = lock.Unlock() }()

	report := Report{
		RunID:      r.newRunID(),
		ContentDir: r.cfg.Paths.ContentDir,
		StartedAt:  r.now(),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)

	files, err := r.deps.Scanner.Scan(report.ContentDir)
	if err != nil {
		return report, err
	}
	pending := scanner.Pending(files)
	report.Scanned = len(files)
	report.Filled = len(files) - len(pending)
	if len(pending) == 0 {
		report.FinishedAt = r.now()
		logger.Info("nothing to do",
			logging.String("content_dir", report.ContentDir),
			logging.Int("filled", report.Filled),
		)
		return report, nil
	}

	logger.Info("batch started",
		logging.Int("pending", len(pending)),
		logging.Int("filled", report.Filled),
	)
	r.startRun(ctx, logger, report, len(pending))

	for i, file := range pending {
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		result := r.processStory(ctx, file)
		report.Results = append(report.Results, result)
		r.recordStory(ctx, logger, report.RunID, result)
	}

	report.FinishedAt = r.now()
	r.finishRun(ctx, logger, report)
	if err := ctx.Err(); err != nil {
		report.Cancelled = true
		logging.WarnWithContext(logger, "batch interrupted", "batch_cancelled",
			logging.Int("processed", len(report.Results)),
			logging.Int("remaining", len(pending)-len(report.Results)),
			logging.String(logging.FieldImpact, "remaining stories stay pending for the next run"),
			logging.String(logging.FieldErrorHint, "rerun storygen to continue"),
		)
		return report, err
	}
	logger.Info("batch finished",
		logging.Int("succeeded", report.Succeeded()),
		logging.Int("failed", report.Failed()),
		logging.Int("warnings", report.WarningCount()),
		logging.Duration("duration", report.Duration()),
	)
	return report, nil
}

func (r *Runner) processStory(ctx context.Context, file story.PlaceholderFile) StoryResult {
	started := r.now()
	ctx = services.WithStory(ctx, file.Label())
	ctx = services.WithStoryIndex(ctx, file.StoryIndex)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("story started", logging.String("file", file.Path))

	result := StoryResult{File: file}
	finish := func() StoryResult {
		result.Duration = r.now().Sub(started)
		return result
	}
	if file.Reconstructed {
		result.Warnings = append(result.Warnings, "question skeleton was reconstructed from defaults")
	}

	generated, err := r.deps.Generator.Generate(services.WithStage(ctx, "generate"), file)
	if err != nil {
		r.fail(logger, &result, "generate", err)
		return finish()
	}

	if r.deps.Shuffler != nil {
		generated.Questions, result.Skipped = r.deps.Shuffler.ShuffleAll(generated.Questions)
		if result.Skipped > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%d question(s) kept their original option order", result.Skipped))
		}
	}

	if problems := r.deps.Validator.Story(generated); len(problems) > 0 {
		result.Warnings = append(result.Warnings, problems...)
		logging.WarnWithContext(logger, "story has quality warnings", "validation_warnings",
			logging.Int("count", len(problems)),
			logging.String("first", problems[0]),
			logging.String(logging.FieldImpact, "story saved as generated"),
			logging.String(logging.FieldErrorHint, "review the story before publishing"),
		)
	}

	paths, err := r.deps.Persister.Persist(services.WithStage(ctx, "persist"), file, generated)
	if err != nil {
		r.fail(logger, &result, "persist", err)
		return finish()
	}
	result.Story = generated
	result.Paths = paths
	result.Success = true

	if r.deps.Persister.UploadEnabled() {
		upload := r.deps.Persister.Upload(services.WithStage(ctx, "upload"), generated)
		result.Upload = upload
		result.Uploaded = upload.Success
		if !upload.Success {
			result.Warnings = append(result.Warnings, upload.Warning())
		}
	}

	result = finish()
	logger.Info("story completed",
		logging.String("title", generated.Title),
		logging.Int("questions", len(generated.Questions)),
		logging.Int("word_count", generated.WordCount),
		logging.Int("warnings", len(result.Warnings)),
		logging.Bool("uploaded", result.Uploaded),
		logging.Duration("duration", result.Duration),
	)
	return result
}

func (r *Runner) fail(logger *slog.Logger, result *StoryResult, stage string, err error) {
	result.Err = err
	result.ErrorKind = services.Kind(err)
	logging.ErrorWithContext(logger, "story failed", "story_failed",
		logging.String(logging.FieldStage, stage),
		logging.String("error_kind", result.ErrorKind),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "the placeholder file is unchanged; rerun to retry"),
	)
}

func (r *Runner) pause(ctx context.Context) error {
	delay := r.cfg.StoryDelay()
	if delay <= 0 {
		return ctx.Err()
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
