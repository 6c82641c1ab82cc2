package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"lightmeterctl/internal/runlock"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "lightmeterctl.lock")

	lock := runlock.New(path)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestSecondAcquireFailsWithBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightmeterctl.lock")

	first := runlock.New(path)
	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer first.Release()

	second := runlock.New(path)
	err := second.Acquire()
	if !errors.Is(err, runlock.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightmeterctl.lock")

	lock := runlock.New(path)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	again := runlock.New(path)
	if err := again.Acquire(); err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}
