// Package workflow runs a batch: scan the content directory, then take each
// pending story through generation, option shuffling, validation,
// persistence, and upload, one story at a time.
//
// Stories are strictly sequential with a fixed pause between them so the
// text-generation service is never hit concurrently. Each story is its own
// error boundary: a failure becomes a failed StoryResult and the loop moves
// on. A file lock in the state directory keeps two runs from working on the
// same content at once, and every outcome is recorded in the run ledger.
package workflow
