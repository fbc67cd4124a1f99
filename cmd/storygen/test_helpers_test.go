package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storygen/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	contentDir string
	logDir     string
	configPath string
	llm        *testsupport.FakeLLM
}

// setupCLITestEnv writes a config pointing at temp directories and at a
// chat-completions server backed by a scripted fake.
func setupCLITestEnv(t *testing.T, apiKey string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("STORYGEN_API_KEY", "")
	t.Setenv("STORYGEN_DATABASE_URL", "")

	env := &cliTestEnv{
		baseDir:    base,
		contentDir: filepath.Join(base, "questions"),
		logDir:     filepath.Join(base, "logs"),
		configPath: filepath.Join(base, "storygen.toml"),
		llm:        testsupport.NewStoryLLM(),
	}
	if err := os.MkdirAll(env.contentDir, 0o755); err != nil {
		t.Fatalf("mkdir content: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		content, err := env.llm.Generate(r.Context(), req.Messages[len(req.Messages)-1].Content)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(server.Close)

	writeTestConfig(t, env, server.URL, apiKey)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv, baseURL, apiKey string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
content_dir = %q
log_dir = %q
state_dir = %q

[llm]
provider = "openai"
api_key = %q
base_url = %q
model = "test-model"
retry_attempts = 2
retry_delay_seconds = 0

[generation]
batch_delay_ms = 0
story_delay_seconds = 0
shuffle_options = true
`, env.contentDir, env.logDir, filepath.Join(env.baseDir, "state"), apiKey, baseURL)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
