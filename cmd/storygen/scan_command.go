package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"storygen/internal/logging"
	"storygen/internal/scanner"
	"storygen/internal/story"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List placeholder files without generating anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			s := scanner.New(logging.NewNop(),
				scanner.WithSentinel(cfg.Generation.PlaceholderSentinel),
				scanner.WithQuestionsPerStory(cfg.Generation.QuestionsPerStory),
			)
			files, err := s.Scan(cfg.Paths.ContentDir)
			if err != nil {
				return err
			}
			if pendingOnly {
				files = scanner.Pending(files)
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No placeholder files found in %s\n", cfg.Paths.ContentDir)
				return nil
			}
			fmt.Fprintln(out, renderScanTable(files))
			pending := len(scanner.Pending(files))
			fmt.Fprintf(out, "%d file(s), %d pending\n", len(files), pending)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only list files that still need generation")
	return cmd
}

func renderScanTable(files []story.PlaceholderFile) string {
	columns := []tableColumn{
		{header: "#", align: alignRight},
		{header: "File"},
		{header: "Difficulty"},
		{header: "Topic"},
		{header: "State"},
		{header: "Skeleton"},
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		skeleton := "-"
		if f.HasPlaceholders() {
			skeleton = "file"
			if f.Reconstructed {
				skeleton = "reconstructed"
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(f.StoryIndex),
			filepath.Base(f.Path),
			string(f.Difficulty),
			story.DisplayTopic(f.Topic),
			f.State.String(),
			skeleton,
		})
	}
	return renderTable(columns, rows)
}
