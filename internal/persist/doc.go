// Package persist writes finished stories back to disk and hands them to the
// remote content store.
//
// Each story is written twice: as a TypeScript module that replaces the
// placeholder file (same path, same extension) and as a sibling JSON file
// with the same base name. Both writes go through a temp file and rename.
// Uploading is best effort; a failed upload becomes a story warning and never
// undoes the local writes.
package persist
