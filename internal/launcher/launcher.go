// Package launcher starts the Python lightmeter daemon as a blocking
// foreground child process.
//
// Virtualenv activation is expressed as explicit child state: interpreter
// resolved from the venv bin directory, VIRTUAL_ENV set, PATH prefixed,
// PYTHONHOME removed. Nothing in the launcher's own environment or working
// directory is mutated, so "deactivation" is simply the child exiting.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"lightmeterctl/internal/liveness"
	"lightmeterctl/internal/logging"
)

// Options configures a daemon launch.
type Options struct {
	// InstallRoot becomes the child's working directory.
	InstallRoot string
	// VenvPath is the absolute virtualenv directory.
	VenvPath string
	// Python is the interpreter name resolved inside the venv bin directory.
	Python string
	// Entrypoint is the absolute path of the daemon script.
	Entrypoint string
	// ErrorLogPath receives the child's stderr (append mode).
	ErrorLogPath string
	// PIDFilePath, when set, records the child pid while it runs.
	PIDFilePath string
	// Timeout bounds the blocking call. Zero means run until daemon exit.
	Timeout time.Duration
}

// Launcher runs the daemon entry point.
type Launcher struct {
	opts   Options
	logger *slog.Logger

	// runner overrides command execution (for testing).
	runner func(cmd *exec.Cmd) error
}

// New creates a Launcher for the given options.
func New(opts Options, logger *slog.Logger) *Launcher {
	return &Launcher{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "launcher"),
	}
}

// WithRunner sets a custom command runner (for testing).
func (l *Launcher) WithRunner(runner func(cmd *exec.Cmd) error) *Launcher {
	l.runner = runner
	return l
}

// Run launches the daemon and blocks until it exits. The returned exit code
// is the daemon's; -1 when the process could not be started or was killed by
// a signal. Stderr is appended to the configured error log so failures
// surface there for the next rotation pass.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	if _, err := os.Stat(l.opts.Entrypoint); err != nil {
		return -1, fmt.Errorf("daemon entrypoint: %w", err)
	}

	interpreter, err := resolveInterpreter(l.opts.VenvPath, l.opts.Python)
	if err != nil {
		return -1, err
	}

	cmd := exec.CommandContext(ctx, interpreter, l.opts.Entrypoint)
	cmd.Dir = l.opts.InstallRoot
	cmd.Env = venvEnviron(os.Environ(), l.opts.VenvPath)

	errLog, err := os.OpenFile(l.opts.ErrorLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return -1, fmt.Errorf("open error log: %w", err)
	}
	defer errLog.Close()
	cmd.Stderr = errLog

	l.logger.Info("launching daemon",
		logging.String(logging.FieldEventType, "daemon_launch"),
		logging.String("interpreter", interpreter),
		logging.String("entrypoint", l.opts.Entrypoint),
		logging.Duration("timeout", l.opts.Timeout),
	)

	if l.runner != nil {
		if err := l.runner(cmd); err != nil {
			return exitCode(err), err
		}
		return 0, nil
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start daemon: %w", err)
	}

	if err := liveness.WritePIDFile(l.opts.PIDFilePath, cmd.Process.Pid); err != nil {
		logging.WarnWithContext(l.logger, "pid file write failed", "pid_file_write_failed",
			logging.Error(err),
			logging.String("path", l.opts.PIDFilePath),
			logging.String(logging.FieldImpact, "pid-file liveness checks will miss this process"),
		)
	}

	waitErr := cmd.Wait()
	if err := liveness.RemovePIDFile(l.opts.PIDFilePath); err != nil {
		logging.WarnWithContext(l.logger, "pid file remove failed", "pid_file_remove_failed",
			logging.Error(err),
			logging.String("path", l.opts.PIDFilePath),
		)
	}

	if waitErr != nil {
		if ctx.Err() != nil {
			return exitCode(waitErr), fmt.Errorf("daemon launch cancelled: %w", ctx.Err())
		}
		return exitCode(waitErr), fmt.Errorf("daemon exited: %w", waitErr)
	}
	return 0, nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// resolveInterpreter locates the Python binary inside the venv bin directory.
// exec.Command resolves names against the parent's PATH, not cmd.Env, so the
// venv interpreter must be an explicit path. A bare PATH lookup is the
// fallback when the venv has no such binary.
func resolveInterpreter(venvPath, python string) (string, error) {
	if venvPath != "" {
		candidate := filepath.Join(venvPath, "bin", python)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	resolved, err := exec.LookPath(python)
	if err != nil {
		return "", fmt.Errorf("resolve interpreter %q: %w", python, err)
	}
	return resolved, nil
}
