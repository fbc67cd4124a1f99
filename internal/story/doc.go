// Package story defines the reading-comprehension data model shared by every
// pipeline stage: placeholder files, question skeletons, generated questions,
// stories, and their summaries.
//
// It also owns the question-type catalog, an embedded YAML table that maps
// each questionType to its prompt instruction, skills, and tags.
package story
