// Package runner orchestrates one launch/check/rotate cycle.
//
// A cycle is: acquire the run lock, probe for an already-running daemon,
// launch it in the foreground when absent, then rotate the error log.
// Rotation always runs, whether or not a launch happened and whether or not
// it failed; launch failures surface in the error log and the history store
// rather than aborting the cycle.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"lightmeterctl/internal/config"
	"lightmeterctl/internal/history"
	"lightmeterctl/internal/liveness"
	"lightmeterctl/internal/logging"
	"lightmeterctl/internal/rotation"
	"lightmeterctl/internal/runlock"
)

// Console messages preserved from the original launcher scripts.
const (
	MsgRunning        = "running"
	MsgNoError        = "no error detected"
	MsgRebootIntended = "file is not zero size, reboot commencing"
)

// DaemonLauncher starts the daemon and blocks until it exits.
type DaemonLauncher interface {
	Run(ctx context.Context) (int, error)
}

// Outcome summarizes a completed cycle.
type Outcome struct {
	CycleID        string
	Trigger        string
	AlreadyRunning bool
	Launched       bool
	ExitCode       sql.NullInt64
	LaunchErr      error
	Rotation       rotation.Result
}

// Runner executes cycles against a fixed configuration.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	prober   liveness.Prober
	launcher DaemonLauncher
	store    *history.Store
	lock     *runlock.Lock
	stdout   io.Writer
}

// New assembles a Runner. The store may be nil when history is disabled;
// stdout receives the legacy console messages.
func New(cfg *config.Config, logger *slog.Logger, prober liveness.Prober, launcher DaemonLauncher, store *history.Store, stdout io.Writer) (*Runner, error) {
	if cfg == nil || prober == nil || launcher == nil {
		return nil, errors.New("runner requires config, prober, and launcher")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	return &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "runner"),
		prober:   prober,
		launcher: launcher,
		store:    store,
		lock:     runlock.New(cfg.LockPath()),
		stdout:   stdout,
	}, nil
}

// RunCycle performs one cycle under the run lock. With force set the
// liveness check is skipped and a launch is always attempted. Launch
// failures do not fail the cycle; lock contention and rotation I/O errors do.
func (r *Runner) RunCycle(ctx context.Context, trigger string, force bool) (Outcome, error) {
	if err := r.lock.Acquire(); err != nil {
		return Outcome{}, err
	}
	defer func() {
		if err := r.lock.Release(); err != nil {
			logging.WarnWithContext(r.logger, "run lock release failed", "run_lock_release_failed",
				logging.Error(err),
				logging.String("path", r.lock.Path()),
			)
		}
	}()

	started := time.Now().UTC()
	outcome := Outcome{Trigger: trigger}

	if force {
		r.logger.Info("liveness check skipped",
			logging.String(logging.FieldEventType, "liveness_skipped"),
			logging.String("trigger", trigger),
		)
	} else {
		running, pid, err := r.prober.Running()
		if err != nil {
			// Treat an unreadable process table like the historical pgrep
			// miss: attempt the launch rather than silently doing nothing.
			logging.WarnWithContext(r.logger, "liveness probe failed; assuming daemon absent", "liveness_probe_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "a second daemon may be launched"),
			)
		}
		outcome.AlreadyRunning = running
		if running {
			fmt.Fprintln(r.stdout, MsgRunning)
			r.logger.Info("daemon already running",
				logging.String(logging.FieldEventType, "daemon_already_running"),
				logging.Int("pid", pid),
			)
		}
	}

	if !outcome.AlreadyRunning {
		outcome.Launched = true
		code, err := r.launcher.Run(ctx)
		if code >= 0 {
			outcome.ExitCode = sql.NullInt64{Int64: int64(code), Valid: true}
		}
		if err != nil {
			outcome.LaunchErr = err
			logging.WarnWithContext(r.logger, "daemon launch failed; continuing to rotation", "daemon_launch_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the rotated error log"),
				logging.String(logging.FieldImpact, "no readings are being collected"),
			)
		} else {
			r.logger.Info("daemon exited",
				logging.String(logging.FieldEventType, "daemon_exited"),
				logging.Int64("exit_code", outcome.ExitCode.Int64),
			)
		}
	}

	rotated, rotateErr := r.rotate()
	outcome.Rotation = rotated

	finished := time.Now().UTC()
	outcome.CycleID = r.record(ctx, started, finished, outcome, rotateErr)

	if rotateErr != nil {
		return outcome, fmt.Errorf("rotate error log: %w", rotateErr)
	}
	return outcome, nil
}

func (r *Runner) rotate() (rotation.Result, error) {
	logPath := r.cfg.ErrorLogPath()
	backupPath := r.cfg.BackupLogPath()

	result, err := rotation.Rotate(logPath, backupPath)
	if err != nil {
		return result, err
	}

	if !result.Rotated {
		fmt.Fprintln(r.stdout, MsgNoError)
		r.logger.Info("error log clean",
			logging.String(logging.FieldEventType, "error_log_clean"),
			logging.String("path", logPath),
		)
		return result, nil
	}

	if r.cfg.Rotation.AnnounceReboot {
		fmt.Fprintln(r.stdout, MsgRebootIntended)
	}
	r.logger.Info("error log rotated",
		logging.String(logging.FieldEventType, "error_log_rotated"),
		logging.String("path", logPath),
		logging.String("backup", result.BackupPath),
		logging.Int64("bytes", result.Bytes),
	)
	return result, nil
}

func (r *Runner) record(ctx context.Context, started, finished time.Time, outcome Outcome, rotateErr error) string {
	if r.store == nil {
		return ""
	}

	var errText string
	switch {
	case rotateErr != nil:
		errText = rotateErr.Error()
	case outcome.LaunchErr != nil:
		errText = outcome.LaunchErr.Error()
	}

	rec, err := r.store.Record(ctx, history.Record{
		StartedAt:      started,
		FinishedAt:     finished,
		Trigger:        outcome.Trigger,
		AlreadyRunning: outcome.AlreadyRunning,
		Launched:       outcome.Launched,
		ExitCode:       outcome.ExitCode,
		Rotated:        outcome.Rotation.Rotated,
		RotatedBytes:   outcome.Rotation.Bytes,
		Error:          errText,
	})
	if err != nil {
		logging.WarnWithContext(r.logger, "cycle history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "cycle missing from history output"),
		)
		return ""
	}

	r.logger.Debug("cycle recorded", logging.String(logging.FieldCycleID, rec.ID))
	return rec.ID
}
