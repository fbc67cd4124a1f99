// Package logging assembles structured slog loggers and formatting helpers used
// across storygen.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can tag log lines with the
// run identifier, story file, and stage automatically. Each batch run writes a
// timestamped log file next to its summary report; RetainRunFiles prunes the
// old ones.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// the same field shapes as the rest of the pipeline.
package logging
