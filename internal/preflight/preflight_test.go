package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"lightmeterctl/internal/config"
	"lightmeterctl/internal/preflight"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.InstallRoot = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	return &cfg
}

func TestCheckDirectoryAccessOK(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccessNotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccessNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckEntrypointMissing(t *testing.T) {
	cfg := testConfig(t)
	result := preflight.CheckEntrypoint(cfg)
	if result.Passed {
		t.Fatal("expected failure when entrypoint is absent")
	}
}

func TestCheckEntrypointPresent(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.EntrypointPath(), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckEntrypoint(cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckInterpreterPrefersVenv(t *testing.T) {
	cfg := testConfig(t)
	binDir := filepath.Join(cfg.VenvPath(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, cfg.Daemon.Python), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckInterpreter(cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Detail == "" || result.Detail[len(result.Detail)-6:] != "(venv)" {
		t.Fatalf("expected venv interpreter to win, got: %s", result.Detail)
	}
}

func TestCheckInterpreterFallsBackToPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Daemon.Python = "sh"
	result := preflight.CheckInterpreter(cfg)
	if !result.Passed {
		t.Fatalf("expected pass via PATH lookup, got: %s", result.Detail)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := preflight.CheckDiskSpace("space", t.TempDir(), 1)
	if !result.Passed {
		t.Fatalf("expected at least one byte free, got: %s", result.Detail)
	}
}

func TestRunAllReportsEveryCheck(t *testing.T) {
	cfg := testConfig(t)
	results := preflight.RunAll(cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if preflight.Passed(results) {
		t.Fatal("expected failure while entrypoint is absent")
	}
}
