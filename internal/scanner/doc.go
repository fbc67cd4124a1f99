// Package scanner discovers placeholder reading-question files and loads the
// question skeletons they contain.
//
// Files are named {difficulty}{Topic}ReadingQuestions.{ts,tsx,js}. A file is
// Pending while it still contains the placeholder sentinel and Filled once a
// successful run has rewritten it, so re-running a scan over the same
// directory skips finished stories without touching the text-generation
// service.
package scanner
