// Package runlock serializes run cycles with an advisory file lock.
//
// Overlapping scheduler invocations would otherwise race on the error log
// and could both decide to launch a daemon.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy indicates another lightmeterctl invocation holds the lock.
var ErrBusy = errors.New("another lightmeterctl run is in progress")

// Lock guards the check/launch/rotate sequence.
type Lock struct {
	path  string
	flock *flock.Flock
}

// New creates a lock at the given path.
func New(path string) *Lock {
	return &Lock{path: path, flock: flock.New(path)}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking. It returns ErrBusy when another
// process holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %q: %w", l.path, err)
	}
	if !ok {
		return ErrBusy
	}
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	return l.flock.Unlock()
}
