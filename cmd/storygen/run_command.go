package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storygen/internal/fileutil"
	"storygen/internal/logging"
)

func runBatch(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	logger, logPath, err := logging.NewFromConfig(cfg, started)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.RetainRunFiles(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, started, logPath)

	runner, cleanup, err := buildRunner(signalCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	report, runErr := runner.Run(signalCtx)
	if report.RunID == "" {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderReport(report, shouldColorize(out)))

	if cfg.Paths.LogDir != "" {
		reportPath := logging.RunReportPath(cfg.Paths.LogDir, started)
		if err := fileutil.WriteFileAtomic(reportPath, []byte(renderReport(report, false)), 0o644); err != nil {
			logging.WarnWithContext(logger, "report file not written", "report_write_failed",
				logging.String("path", reportPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "summary only available on stdout"),
				logging.String(logging.FieldErrorHint, "check permissions on paths.log_dir"),
			)
		} else {
			fmt.Fprintf(out, "Report: %s\n", reportPath)
		}
	}
	if logPath != "" {
		fmt.Fprintf(out, "Log:    %s\n", logPath)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Run interrupted; remaining files stay pending.")
	}
	return runErr
}
