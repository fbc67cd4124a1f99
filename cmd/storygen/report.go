package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"storygen/internal/workflow"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

// renderReport formats the end-of-run summary: counts, a per-story table,
// then every failure and warning.
func renderReport(report workflow.Report, colorize bool) string {
	var lines []string
	lines = append(lines, renderSectionHeader("storygen run "+shortID(report.RunID), colorize)...)

	if report.NothingToDo() {
		message := fmt.Sprintf("no pending placeholder files in %s", report.ContentDir)
		if report.Filled > 0 {
			message = fmt.Sprintf("%s (%d already filled)", message, report.Filled)
		}
		lines = append(lines, renderStatusLine("Nothing to do", statusInfo, message, colorize))
		return strings.Join(lines, "\n") + "\n"
	}

	lines = append(lines,
		renderStatusLine("Scanned", statusInfo, fmt.Sprintf("%d file(s), %d already filled", report.Scanned, report.Filled), colorize),
		renderStatusLine("Succeeded", countKind(report.Succeeded(), statusOK, statusWarn), strconv.Itoa(report.Succeeded()), colorize),
		renderStatusLine("Failed", countKind(report.Failed(), statusOK, statusError), strconv.Itoa(report.Failed()), colorize),
		renderStatusLine("Warnings", countKind(report.WarningCount(), statusOK, statusWarn), strconv.Itoa(report.WarningCount()), colorize),
		renderStatusLine("Duration", statusInfo, report.Duration().Round(time.Second).String(), colorize),
	)
	if report.Cancelled {
		lines = append(lines, renderStatusLine("Interrupted", statusWarn, "remaining files stay pending", colorize))
	}
	lines = append(lines, "", renderResultsTable(report.Results))

	var saved, failures, warnings []string
	for _, res := range report.Results {
		name := filepath.Base(res.File.Path)
		if res.Success && res.Paths.Module != "" {
			saved = append(saved, statusIndent+res.Paths.Describe())
		}
		if !res.Success {
			failures = append(failures, fmt.Sprintf("%s%s: %v", statusIndent, name, res.Err))
		}
		for _, w := range res.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s%s: %s", statusIndent, name, w))
		}
	}
	if len(saved) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Saved", colorize)...)
		lines = append(lines, saved...)
	}
	if len(failures) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Failures", colorize)...)
		lines = append(lines, failures...)
	}
	if len(warnings) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Warnings", colorize)...)
		lines = append(lines, warnings...)
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderResultsTable(results []workflow.StoryResult) string {
	columns := []tableColumn{
		{header: "#", align: alignRight},
		{header: "File"},
		{header: "Status"},
		{header: "Title", maxWidth: 40},
		{header: "Words", align: alignRight},
		{header: "Warnings", align: alignRight},
		{header: "Upload"},
	}
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "ok"
		words := "-"
		if res.Success {
			words = strconv.Itoa(res.Story.WordCount)
		} else {
			status = "failed (" + res.ErrorKind + ")"
		}
		upload := "-"
		switch {
		case res.Uploaded:
			upload = "yes"
		case res.Upload.Error != "":
			upload = "failed"
		}
		rows = append(rows, []string{
			strconv.Itoa(res.File.StoryIndex),
			filepath.Base(res.File.Path),
			status,
			res.Title(),
			words,
			strconv.Itoa(len(res.Warnings)),
			upload,
		})
	}
	return renderTable(columns, rows)
}

func countKind(n int, zero, nonZero statusKind) statusKind {
	if n == 0 {
		return zero
	}
	return nonZero
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
