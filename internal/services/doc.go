// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the run ID, story file, story index, and stage
//     name for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (configuration, transient, parse, upload) for the summary report and
//     the run ledger.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
