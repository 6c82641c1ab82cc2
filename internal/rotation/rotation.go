// Package rotation rotates the lightmeter daemon's error log.
//
// A rotation keeps exactly one backup generation: a non-empty error log is
// renamed over the backup path, and a fresh empty file replaces it. An
// absent or empty error log is left untouched.
package rotation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Result describes the outcome of a rotation pass.
type Result struct {
	// Rotated reports whether the error log was moved to the backup path.
	Rotated bool
	// Bytes is the size of the rotated log, zero when nothing rotated.
	Bytes int64
	// BackupPath is the destination of the rotated contents, empty when
	// nothing rotated.
	BackupPath string
}

// Rotate moves a non-empty log file at logPath to backupPath, replacing any
// previous backup, and recreates logPath as an empty file. When logPath is
// absent or empty no filesystem change occurs. Rotate is idempotent: a
// second pass over an already-rotated log is a no-op.
func Rotate(logPath, backupPath string) (Result, error) {
	info, err := os.Stat(logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("stat error log: %w", err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("error log %q is a directory", logPath)
	}
	if info.Size() == 0 {
		return Result{}, nil
	}

	if err := os.Rename(logPath, backupPath); err != nil {
		return Result{}, fmt.Errorf("move error log to backup: %w", err)
	}

	// Recreate the live log so the daemon's next stderr write appends to an
	// existing empty file, matching the touch in the original sequence.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{Rotated: true, Bytes: info.Size(), BackupPath: backupPath},
			fmt.Errorf("recreate error log: %w", err)
	}
	if err := file.Close(); err != nil {
		return Result{Rotated: true, Bytes: info.Size(), BackupPath: backupPath},
			fmt.Errorf("close recreated error log: %w", err)
	}

	return Result{Rotated: true, Bytes: info.Size(), BackupPath: backupPath}, nil
}
