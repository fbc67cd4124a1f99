package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storygen/internal/scanner"
	"storygen/internal/testsupport"
)

func TestRunWithoutCredentialFails(t *testing.T) {
	env := setupCLITestEnv(t, "")
	target := testsupport.WritePlaceholder(t, env.contentDir, "easyScienceReadingQuestions.ts", 1, 25)

	_, _, err := runCLI(t, nil, env.configPath)
	if err == nil {
		t.Fatal("expected missing credential to fail")
	}
	requireContains(t, err.Error(), "llm.api_key is required")
	if env.llm.Calls() != 0 {
		t.Fatalf("generator called %d times without a credential", env.llm.Calls())
	}
	data, readErr := os.ReadFile(target)
	if readErr != nil {
		t.Fatalf("read placeholder: %v", readErr)
	}
	if !strings.Contains(string(data), scanner.DefaultSentinel) {
		t.Fatal("placeholder was modified")
	}
}

func TestRunBatchPrintsReportAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	target := testsupport.WritePlaceholder(t, env.contentDir, "mediumOceanReadingQuestions.ts", 1, 25)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Succeeded:")
	requireContains(t, out, "The Quiet Laboratory")
	requireContains(t, out, "mediumOceanReadingQuestions.ts")

	reports, err := filepath.Glob(filepath.Join(env.logDir, "report-*.txt"))
	if err != nil || len(reports) != 1 {
		t.Fatalf("expected one report file, got %v (err %v)", reports, err)
	}
	saved, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	requireContains(t, string(saved), "The Quiet Laboratory")
	if strings.Contains(string(saved), "\x1b[") {
		t.Fatal("report file contains colour codes")
	}
	logs, _ := filepath.Glob(filepath.Join(env.logDir, "storygen-*.log"))
	if len(logs) != 1 {
		t.Fatalf("expected one run log, got %v", logs)
	}

	if _, err := os.Stat(strings.TrimSuffix(target, ".ts") + ".json"); err != nil {
		t.Fatalf("json sibling missing: %v", err)
	}

	history, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, history, "test-model")

	calls := env.llm.Calls()
	again, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, again, "Nothing to do")
	if env.llm.Calls() != calls {
		t.Fatal("second run called the generator")
	}
}

func TestScanListsFilesWithoutGenerating(t *testing.T) {
	env := setupCLITestEnv(t, "")
	testsupport.WritePlaceholder(t, env.contentDir, "hardSpaceReadingQuestions.ts", 2, 25)
	testsupport.WriteContent(t, filepath.Join(env.contentDir, "easyArtReadingQuestions.ts"), "export const passage = `done`;\n")
	testsupport.WriteContent(t, filepath.Join(env.contentDir, "notes.md"), "PLACEHOLDER_CONTENT")

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "hardSpaceReadingQuestions.ts")
	requireContains(t, out, "easyArtReadingQuestions.ts")
	requireContains(t, out, "2 file(s), 1 pending")
	if strings.Contains(out, "notes.md") {
		t.Fatal("scan listed a non-matching file")
	}
	if env.llm.Calls() != 0 {
		t.Fatal("scan called the generator")
	}
}

func TestHistoryWithoutRuns(t *testing.T) {
	env := setupCLITestEnv(t, "")
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded yet")

	if _, _, err := runCLI(t, []string{"history", "missing"}, env.configPath); err == nil {
		t.Fatal("expected unknown run to fail")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestConfigValidateReportsMissingCredential(t *testing.T) {
	env := setupCLITestEnv(t, "")
	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatal("expected validate to fail without a credential")
	}
	requireContains(t, out, "Credential:  no")
}
