package persist

import (
	"encoding/json"
	"fmt"
	"strings"

	"storygen/internal/story"
)

// FormatVersion is embedded in every generated module and JSON document.
const FormatVersion = "2.0"

// Document is the JSON representation written next to each module.
type Document struct {
	Version      string           `json:"version"`
	StorySummary story.Summary    `json:"storySummary"`
	Passage      string           `json:"passage"`
	Questions    []story.Question `json:"questions"`
}

// NewDocument builds the persisted representation of s.
func NewDocument(s story.Story) Document {
	questions := s.Questions
	if questions == nil {
		questions = []story.Question{}
	}
	return Document{
		Version:      FormatVersion,
		StorySummary: s.Summary(),
		Passage:      s.Passage,
		Questions:    questions,
	}
}

// RenderJSON encodes doc as indented JSON with a trailing newline.
func RenderJSON(doc Document) ([]byte, error) {
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode story json: %w", err)
	}
	return append(encoded, '\n'), nil
}

// RenderModule renders doc as a TypeScript module. JSON is valid TypeScript
// literal syntax, so the summary and questions are emitted as JSON.
func RenderModule(doc Document) ([]byte, error) {
	summary, err := json.MarshalIndent(doc.StorySummary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode story summary: %w", err)
	}
	questions, err := json.MarshalIndent(doc.Questions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	var b strings.Builder
	b.WriteString("// Generated by storygen. Edits will be overwritten on the next run.\n\n")
	fmt.Fprintf(&b, "export const version = %q;\n\n", doc.Version)
	fmt.Fprintf(&b, "export const storySummary = %s;\n\n", summary)
	fmt.Fprintf(&b, "export const passage = `%s`;\n\n", EscapeTemplateLiteral(doc.Passage))
	fmt.Fprintf(&b, "export const questions = %s;\n\n", questions)
	b.WriteString("// Legacy names kept for existing imports.\n")
	b.WriteString("export const readingPassage = passage;\n")
	b.WriteString("export const readingQuestions = questions;\n\n")
	b.WriteString("export default { version, storySummary, passage, questions };\n")
	return []byte(b.String()), nil
}

var templateLiteralEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"${", "\\${",
)

// EscapeTemplateLiteral escapes text for use inside a JavaScript template
// literal.
func EscapeTemplateLiteral(text string) string {
	return templateLiteralEscaper.Replace(text)
}
