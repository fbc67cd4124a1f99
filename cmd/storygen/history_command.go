package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storygen/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or the stories of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			ledger, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer ledger.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := ledger.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}
				records, err := ledger.StoryResults(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Run %s started %s (%s, %s)\n", run.ID, formatWhen(run.StartedAt), run.Provider, run.Model)
				fmt.Fprintln(out, renderStoryRecords(records))
				return nil
			}

			runs, err := ledger.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func renderRuns(runs []store.Run) string {
	columns := []tableColumn{
		{header: "Run"},
		{header: "Started"},
		{header: "Model"},
		{header: "Stories", align: alignRight},
		{header: "OK", align: alignRight},
		{header: "Failed", align: alignRight},
		{header: "Finished"},
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			formatWhen(run.StartedAt),
			run.Model,
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
			yesNo(run.Finished()),
		})
	}
	return renderTable(columns, rows)
}

func renderStoryRecords(records []store.StoryRecord) string {
	columns := []tableColumn{
		{header: "#", align: alignRight},
		{header: "File"},
		{header: "Result"},
		{header: "Title", maxWidth: 40},
		{header: "Warnings", align: alignRight},
		{header: "Duration", align: alignRight},
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		result := "ok"
		if !rec.Success {
			result = "failed (" + rec.ErrorKind + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.StoryIndex),
			filepath.Base(rec.File),
			result,
			rec.Title,
			strconv.Itoa(len(rec.Warnings)),
			rec.Duration.Round(time.Second).String(),
		})
	}
	return renderTable(columns, rows)
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
