// Package liveness detects whether a lightmeter daemon is already running.
//
// Two strategies exist. Name matching scans the process table for an exact
// executable name, preserving the historical check: any unrelated process
// with the same name suppresses a launch. Pid-file matching trusts the pid
// file written by the launcher and verifies the recorded process is alive.
package liveness

import (
	"fmt"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// Prober reports whether the daemon is considered running.
type Prober interface {
	Running() (bool, int, error)
}

// processLister abstracts process table access for tests.
type processLister func() ([]ps.Process, error)

// NameProber matches processes by exact executable name.
type NameProber struct {
	name string
	list processLister
}

// NewNameProber creates a prober matching the given executable name.
func NewNameProber(name string) *NameProber {
	return &NameProber{name: strings.TrimSpace(name), list: ps.Processes}
}

// WithLister sets a custom process lister (for testing).
func (p *NameProber) WithLister(list func() ([]ps.Process, error)) *NameProber {
	p.list = list
	return p
}

// Running scans the process table for the configured name and returns the
// pid of the first exact match.
func (p *NameProber) Running() (bool, int, error) {
	if p.name == "" {
		return false, 0, fmt.Errorf("process name is empty")
	}
	procs, err := p.list()
	if err != nil {
		return false, 0, fmt.Errorf("list processes: %w", err)
	}
	for _, proc := range procs {
		if proc.Executable() == p.name {
			return true, proc.Pid(), nil
		}
	}
	return false, 0, nil
}
