package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lightmeterctl/internal/config"
	"lightmeterctl/internal/history"
	"lightmeterctl/internal/logging"
	"lightmeterctl/internal/preflight"
	"lightmeterctl/internal/runlock"
	"lightmeterctl/internal/usbwatch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Supervise the daemon: run launch cycles on an interval and on USB hotplug",
		Long: `Watch runs launch cycles until interrupted. A cycle fires on every
interval tick and, when enabled, whenever the configured USB meter is
plugged in. Each watch session writes its own log file under the log
directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cfg, logLevel, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level for this session")
	return cmd
}

func runWatch(cmdCtx context.Context, cfg *config.Config, logLevel string, stdout io.Writer) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("lightmeterctl-%s.log", runID))

	logger, err := logging.New(logging.Options{
		Level:            logLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update lightmeterctl.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "lightmeterctl-*.log", Exclude: []string{logPath}},
	)

	checks := preflight.RunAll(cfg)
	for _, check := range checks {
		if check.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		)
	}
	if !preflight.Passed(checks) {
		return errors.New("preflight checks failed; fix the reported problems and retry")
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	r, err := buildRunner(cfg, logger, store, stdout)
	if err != nil {
		return err
	}

	cycle := func(trigger string) {
		if _, err := r.RunCycle(signalCtx, trigger, false); err != nil {
			if errors.Is(err, runlock.ErrBusy) {
				logger.Debug("cycle skipped, another run holds the lock",
					logging.String("trigger", trigger),
				)
				return
			}
			logger.Error("cycle failed",
				logging.String(logging.FieldEventType, "cycle_failed"),
				logging.String("trigger", trigger),
				logging.Error(err),
			)
		}
	}

	monitor := newUSBMonitor(cfg, logger, cycle)
	if monitor != nil {
		if err := monitor.Start(signalCtx); err != nil {
			logging.WarnWithContext(logger, "usb monitor unavailable", "usb_monitor_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "hotplug cycles disabled for this session"),
			)
		} else {
			defer monitor.Stop()
		}
	}

	interval := time.Duration(cfg.Watch.Interval) * time.Second
	logger.Info("watch started",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.Duration("interval", interval),
		logging.Bool("usb_events", monitor != nil),
		logging.String("log_path", logPath),
	)

	cycle(history.TriggerInterval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-signalCtx.Done():
			logger.Info("watch shutting down",
				logging.String(logging.FieldEventType, "watch_stopped"),
			)
			return nil
		case <-ticker.C:
			cycle(history.TriggerInterval)
		}
	}
}

func newUSBMonitor(cfg *config.Config, logger *slog.Logger, cycle func(trigger string)) *usbwatch.Monitor {
	if !cfg.Watch.USBEvents {
		return nil
	}
	return usbwatch.New(cfg.Watch.USBVendorID, cfg.Watch.USBModelID, logger, func(ctx context.Context, device string) {
		cycle(history.TriggerUSB)
	})
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "lightmeterctl.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
