package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"storygen/internal/story"
)

var (
	questionsExportPattern = regexp.MustCompile(`export\s+(?:const|let|var)\s+questions\s*(?::[^=]+)?=\s*`)
	unquotedKeyPattern     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingCommaPattern   = regexp.MustCompile(`,(\s*[\]}])`)
)

// ParseQuestionsExport extracts the array literal assigned to the questions
// export of a TypeScript or JavaScript module and decodes its skeleton fields.
// Object literals with unquoted keys or trailing commas are accepted.
func ParseQuestionsExport(source string) ([]story.Skeleton, error) {
	literal, err := QuestionsLiteral(source)
	if err != nil {
		return nil, err
	}

	var skeletons []story.Skeleton
	if err := json.Unmarshal([]byte(literal), &skeletons); err == nil {
		return skeletons, nil
	}
	relaxed := unquotedKeyPattern.ReplaceAllString(literal, `$1"$2":`)
	relaxed = trailingCommaPattern.ReplaceAllString(relaxed, "$1")
	if err := json.Unmarshal([]byte(relaxed), &skeletons); err != nil {
		return nil, fmt.Errorf("decode questions export: %w", err)
	}
	return skeletons, nil
}

// QuestionsLiteral returns the source text of the array assigned to the
// questions export.
func QuestionsLiteral(source string) (string, error) {
	loc := questionsExportPattern.FindStringIndex(source)
	if loc == nil {
		return "", errors.New("questions export not found")
	}
	return arrayLiteral(source[loc[1]:])
}

// arrayLiteral returns the bracket-balanced array starting at the first
// character of src, skipping brackets inside string literals.
func arrayLiteral(src string) (string, error) {
	if src == "" || src[0] != '[' {
		return "", errors.New("questions export is not an array literal")
	}
	depth := 0
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return src[:i+1], nil
			}
		}
	}
	return "", errors.New("questions export array is not terminated")
}
