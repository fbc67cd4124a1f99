package story

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// DefaultQuestionType is used when a skeleton names an unknown type.
const DefaultQuestionType = "detail"

// QuestionType describes one entry of the question-type catalog.
type QuestionType struct {
	Type        string   `yaml:"type"`
	Instruction string   `yaml:"instruction"`
	Skills      []string `yaml:"skills"`
	Tags        []string `yaml:"tags"`
}

// Catalog maps question types to their prompt instruction, skills, and tags.
type Catalog struct {
	order []QuestionType
	index map[string]QuestionType
}

var defaultCatalog = mustLoadCatalog(catalogYAML)

// DefaultCatalog returns the embedded question-type catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// LoadCatalog parses a YAML list of question types.
func LoadCatalog(data []byte) (*Catalog, error) {
	var entries []QuestionType
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse question catalog: %w", err)
	}
	c := &Catalog{index: make(map[string]QuestionType, len(entries))}
	for _, entry := range entries {
		entry.Type = normalizeType(entry.Type)
		if entry.Type == "" {
			return nil, fmt.Errorf("parse question catalog: entry without type")
		}
		if _, dup := c.index[entry.Type]; dup {
			return nil, fmt.Errorf("parse question catalog: duplicate type %q", entry.Type)
		}
		c.order = append(c.order, entry)
		c.index[entry.Type] = entry
	}
	if _, ok := c.index[DefaultQuestionType]; !ok {
		return nil, fmt.Errorf("parse question catalog: missing %q entry", DefaultQuestionType)
	}
	return c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the catalog entry for questionType, falling back to detail.
func (c *Catalog) Lookup(questionType string) QuestionType {
	if entry, ok := c.index[normalizeType(questionType)]; ok {
		return entry
	}
	return c.index[DefaultQuestionType]
}

// Known reports whether questionType has its own catalog entry.
func (c *Catalog) Known(questionType string) bool {
	_, ok := c.index[normalizeType(questionType)]
	return ok
}

// Types returns the catalog types in declaration order.
func (c *Catalog) Types() []string {
	out := make([]string, len(c.order))
	for i, entry := range c.order {
		out[i] = entry.Type
	}
	return out
}

// At returns the i-th type, cycling through the catalog.
func (c *Catalog) At(i int) QuestionType {
	if i < 0 {
		i = -i
	}
	return c.order[i%len(c.order)]
}

func normalizeType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(value, "-", "_")
}
