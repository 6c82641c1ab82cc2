package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"lightmeterctl/internal/config"
	"lightmeterctl/internal/history"
	"lightmeterctl/internal/launcher"
	"lightmeterctl/internal/liveness"
	"lightmeterctl/internal/logging"
	"lightmeterctl/internal/runner"
)

// newConsoleLogger builds a logger writing to stderr so the legacy console
// messages on stdout stay machine-readable.
func newConsoleLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func buildProber(cfg *config.Config) liveness.Prober {
	if cfg.Liveness.Mode == "pidfile" {
		return liveness.NewPIDFileProber(cfg.PIDFilePath())
	}
	return liveness.NewNameProber(cfg.Liveness.ProcessName)
}

func buildLauncher(cfg *config.Config, logger *slog.Logger) *launcher.Launcher {
	opts := launcher.Options{
		InstallRoot:  cfg.Paths.InstallRoot,
		VenvPath:     cfg.VenvPath(),
		Python:       cfg.Daemon.Python,
		Entrypoint:   cfg.EntrypointPath(),
		ErrorLogPath: cfg.ErrorLogPath(),
		Timeout:      time.Duration(cfg.Daemon.LaunchTimeout) * time.Second,
	}
	if cfg.Liveness.Mode == "pidfile" {
		opts.PIDFilePath = cfg.PIDFilePath()
	}
	return launcher.New(opts, logger)
}

// openHistory returns nil without error when history is disabled.
func openHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.HistoryDBPath(), cfg.History.Keep)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

func buildRunner(cfg *config.Config, logger *slog.Logger, store *history.Store, stdout io.Writer) (*runner.Runner, error) {
	return runner.New(cfg, logger, buildProber(cfg), buildLauncher(cfg, logger), store, stdout)
}
