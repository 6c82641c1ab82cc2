package liveness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFileProber checks the pid recorded by the launcher.
type PIDFileProber struct {
	path string
}

// NewPIDFileProber creates a prober backed by the given pid file path.
func NewPIDFileProber(path string) *PIDFileProber {
	return &PIDFileProber{path: path}
}

// Running reads the pid file and verifies the process is still alive via a
// zero signal. A missing file, unparsable content, or a dead process all
// count as not running.
func (p *PIDFileProber) Running() (bool, int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("read pid file %q: %w", p.path, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false, 0, nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		if errors.Is(err, syscall.EPERM) {
			// Alive but owned by another user.
			return true, pid, nil
		}
		return false, 0, nil
	}
	return true, pid, nil
}

// WritePIDFile records a child pid for later pid-file liveness checks.
func WritePIDFile(path string, pid int) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// RemovePIDFile deletes the pid file, ignoring a missing file.
func RemovePIDFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
