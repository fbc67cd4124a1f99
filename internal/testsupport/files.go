package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storygen/internal/story"
)

// PlaceholderSource renders a placeholder content module whose questions
// export carries count skeletons for storyIndex.
func PlaceholderSource(storyIndex, count int) string {
	catalog := story.DefaultCatalog()
	skeletons := make([]story.Skeleton, count)
	for i := range skeletons {
		skeletons[i] = story.Skeleton{
			ID:           story.QuestionID(storyIndex, i+1),
			QuestionType: catalog.At(i).Type,
		}
	}
	encoded, _ := json.MarshalIndent(skeletons, "", "  ")
	var b strings.Builder
	b.WriteString("// Placeholder reading questions.\n")
	b.WriteString("export const passage = `PLACEHOLDER_CONTENT`;\n\n")
	fmt.Fprintf(&b, "export const questions = %s;\n", encoded)
	return b.String()
}

// WritePlaceholder writes a placeholder module named name into dir.
func WritePlaceholder(t testing.TB, dir, name string, storyIndex, count int) string {
	t.Helper()
	return WriteContent(t, filepath.Join(dir, name), PlaceholderSource(storyIndex, count))
}

// WriteContent writes content to path, creating parent directories.
func WriteContent(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
