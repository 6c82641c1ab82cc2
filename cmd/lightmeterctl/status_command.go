package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lightmeterctl/internal/config"
	"lightmeterctl/internal/history"
	"lightmeterctl/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon liveness, environment health, and the last cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return renderStatus(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

func renderStatus(ctx context.Context, cfg *config.Config, out io.Writer) error {
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderLiveness(cfg, colorize))
	fmt.Fprintln(out, renderErrorLog(cfg, colorize))

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Environment", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, check := range preflight.RunAll(cfg) {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Last cycle", colorize) {
		fmt.Fprintln(out, line)
	}
	return renderLastCycle(ctx, cfg, out, colorize)
}

func renderLiveness(cfg *config.Config, colorize bool) string {
	running, pid, err := buildProber(cfg).Running()
	switch {
	case err != nil:
		return renderStatusLine("Daemon", statusWarn, fmt.Sprintf("probe failed: %v", err), colorize)
	case running && pid > 0:
		return renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d, %s probe)", pid, cfg.Liveness.Mode), colorize)
	case running:
		return renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (%s probe)", cfg.Liveness.Mode), colorize)
	default:
		return renderStatusLine("Daemon", statusWarn, fmt.Sprintf("not running (%s probe)", cfg.Liveness.Mode), colorize)
	}
}

func renderErrorLog(cfg *config.Config, colorize bool) string {
	path := cfg.ErrorLogPath()
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return renderStatusLine("Error log", statusInfo, fmt.Sprintf("%s (absent)", path), colorize)
	case err != nil:
		return renderStatusLine("Error log", statusWarn, fmt.Sprintf("%s (stat: %v)", path, err), colorize)
	case info.Size() == 0:
		return renderStatusLine("Error log", statusOK, fmt.Sprintf("%s (empty)", path), colorize)
	default:
		return renderStatusLine("Error log", statusError, fmt.Sprintf("%s (%d bytes pending rotation)", path, info.Size()), colorize)
	}
}

func renderLastCycle(ctx context.Context, cfg *config.Config, out io.Writer, colorize bool) error {
	if !cfg.History.Enabled {
		fmt.Fprintln(out, renderStatusLine("History", statusInfo, "disabled", colorize))
		return nil
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Last(ctx)
	if err != nil {
		return fmt.Errorf("read cycle history: %w", err)
	}
	if rec == nil {
		fmt.Fprintln(out, renderStatusLine("Last cycle", statusInfo, "no cycles recorded", colorize))
		return nil
	}

	kind := statusOK
	message := fmt.Sprintf("%s trigger, %s", rec.Trigger, rec.FinishedAt.Local().Format(time.RFC3339))
	if rec.Error != "" {
		kind = statusError
		message += ", error: " + rec.Error
	}
	fmt.Fprintln(out, renderStatusLine("Last cycle", kind, message, colorize))
	fmt.Fprintln(out, renderStatusLine("Already running", statusInfo, yesNo(rec.AlreadyRunning), colorize))
	fmt.Fprintln(out, renderStatusLine("Launched", statusInfo, yesNo(rec.Launched), colorize))
	if rec.ExitCode.Valid {
		fmt.Fprintln(out, renderStatusLine("Exit code", statusInfo, fmt.Sprintf("%d", rec.ExitCode.Int64), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Rotated", statusInfo, rotatedDetail(rec), colorize))
	return nil
}

func rotatedDetail(rec *history.Record) string {
	if !rec.Rotated {
		return "no"
	}
	return fmt.Sprintf("yes (%d bytes)", rec.RotatedBytes)
}
