package workflow

import (
	"context"
	"log/slog"

	"storygen/internal/logging"
	"storygen/internal/store"
)

// Ledger writes are bookkeeping: failures are logged and the batch goes on.

func (r *Runner) startRun(ctx context.Context, logger *slog.Logger, report Report, pending int) {
	if r.deps.Ledger == nil {
		return
	}
	err := r.deps.Ledger.StartRun(ctx, store.Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		ContentDir: report.ContentDir,
		Provider:   r.cfg.LLM.Provider,
		Model:      r.cfg.LLM.Model,
		Total:      pending,
	})
	if err != nil {
		r.ledgerFailed(logger, "start run", err)
	}
}

func (r *Runner) recordStory(ctx context.Context, logger *slog.Logger, runID string, result StoryResult) {
	if r.deps.Ledger == nil {
		return
	}
	rec := store.StoryRecord{
		RunID:      runID,
		StoryIndex: result.File.StoryIndex,
		File:       result.File.Path,
		Topic:      result.File.Topic,
		Difficulty: string(result.File.Difficulty),
		Title:      result.Title(),
		Success:    result.Success,
		ErrorKind:  result.ErrorKind,
		Warnings:   result.Warnings,
		PassageID:  result.Upload.PassageID,
		Duration:   result.Duration,
		CreatedAt:  r.now(),
	}
	if result.Err != nil {
		rec.ErrorMessage = result.Err.Error()
	}
	if result.Success {
		rec.QuestionCount = len(result.Story.Questions)
		rec.WordCount = result.Story.WordCount
	}
	if err := r.deps.Ledger.RecordStory(ctx, rec); err != nil {
		r.ledgerFailed(logger, "record story", err)
	}
}

func (r *Runner) finishRun(ctx context.Context, logger *slog.Logger, report Report) {
	if r.deps.Ledger == nil {
		return
	}
	// Bookkeeping still lands after Ctrl-C.
	ctx = context.WithoutCancel(ctx)
	err := r.deps.Ledger.FinishRun(ctx, report.RunID, report.FinishedAt,
		len(report.Results), report.Succeeded(), report.Failed())
	if err != nil {
		r.ledgerFailed(logger, "finish run", err)
	}
}

func (r *Runner) ledgerFailed(logger *slog.Logger, op string, err error) {
	logging.WarnWithContext(logger, "run ledger write failed", "ledger_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldImpact, "storygen history will be incomplete for this run"),
		logging.String(logging.FieldErrorHint, "check permissions on paths.state_dir"),
	)
}
