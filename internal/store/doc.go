// Package store holds the two persistence backends of a batch run.
//
// Ledger is a local SQLite database (modernc.org/sqlite, no cgo) recording
// every run and the outcome of each story, which backs the history command.
// It is a log of what happened, not a work queue: the content files
// themselves decide what is pending.
//
// PostgresUploader publishes finished stories to the remote content store
// through a pgx connection pool. Each story is one transaction: a
// reading_passages row followed by its reading_questions rows.
//
// The ledger schema lives in schema.sql. Bump schemaVersion when it changes;
// users delete the ledger file to adopt the new schema.
package store
