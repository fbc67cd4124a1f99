package main

import (
	"context"
	"fmt"
	"log/slog"

	"storygen/internal/config"
	"storygen/internal/generator"
	"storygen/internal/persist"
	"storygen/internal/scanner"
	"storygen/internal/services/llm"
	"storygen/internal/shuffle"
	"storygen/internal/store"
	"storygen/internal/story"
	"storygen/internal/validate"
	"storygen/internal/workflow"
)

// buildRunner wires the pipeline for cfg. The returned cleanup releases the
// ledger and the upload pool and must be called once the run is over.
func buildRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...workflow.Option) (*workflow.Runner, func(), error) {
	settings := cfg.GetLLM()
	client, err := llm.New(ctx, settings.Provider, llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		MaxTokens:      settings.MaxTokens,
		TimeoutSeconds: settings.TimeoutSeconds,
		RetryAttempts:  settings.RetryAttempts,
		RetryDelay:     settings.RetryDelay,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create text-generation client: %w", err)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	catalog := story.DefaultCatalog()
	deps := workflow.Dependencies{
		Scanner: scanner.New(logger,
			scanner.WithSentinel(cfg.Generation.PlaceholderSentinel),
			scanner.WithQuestionsPerStory(cfg.Generation.QuestionsPerStory),
			scanner.WithCatalog(catalog),
		),
		Generator: generator.New(client, logger,
			generator.WithBatchSize(cfg.Generation.BatchSize),
			generator.WithBatchDelay(cfg.BatchDelay()),
			generator.WithCatalog(catalog),
		),
		Validator: validate.New(cfg.Generation.QuestionsPerStory),
	}
	if cfg.Generation.ShuffleOptions {
		deps.Shuffler = shuffle.New(nil, logger)
	}

	var uploader persist.Uploader
	if cfg.Upload.Enabled {
		pg, err := store.NewPostgresUploader(ctx, cfg.Upload.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect content store: %w", err)
		}
		cleanups = append(cleanups, pg.Close)
		uploader = pg
	}
	deps.Persister = persist.New(uploader, logger)

	ledger, err := store.Open(cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("open run ledger: %w", err)
	}
	cleanups = append(cleanups, func() { _ = ledger.Close() })
	deps.Ledger = ledger

	runner, err := workflow.NewRunner(cfg, deps, logger, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return runner, cleanup, nil
}
