package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lightmeterctl/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantRoot := filepath.Join(tempHome, "lightmeter")
	if cfg.Paths.InstallRoot != wantRoot {
		t.Fatalf("unexpected install root: got %q want %q", cfg.Paths.InstallRoot, wantRoot)
	}
	wantLogDir := filepath.Join(tempHome, ".local", "share", "lightmeterctl", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Liveness.Mode != "name" {
		t.Fatalf("expected name liveness by default, got %q", cfg.Liveness.Mode)
	}
	if cfg.Liveness.ProcessName != "python3" {
		t.Fatalf("unexpected process name: %q", cfg.Liveness.ProcessName)
	}
	if cfg.Rotation.AnnounceReboot {
		t.Fatal("expected announce_reboot disabled by default")
	}
	if cfg.Watch.Interval != 300 {
		t.Fatalf("unexpected watch interval: %d", cfg.Watch.Interval)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`install_root = "` + filepath.Join(dir, "lm") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"",
		"[daemon]",
		`entrypoint = "meter.py"`,
		"launch_timeout = 30",
		"",
		"[liveness]",
		`mode = "pidfile"`,
		"",
		"[rotation]",
		"announce_reboot = true",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to exist, got resolved=%q exists=%v", path, resolved, exists)
	}
	if cfg.EntrypointPath() != filepath.Join(dir, "lm", "meter.py") {
		t.Fatalf("unexpected entrypoint path: %q", cfg.EntrypointPath())
	}
	if cfg.ErrorLogPath() != filepath.Join(dir, "lm", "lightmeter.err") {
		t.Fatalf("unexpected error log path: %q", cfg.ErrorLogPath())
	}
	if cfg.BackupLogPath() != cfg.ErrorLogPath()+".bak" {
		t.Fatalf("unexpected backup path: %q", cfg.BackupLogPath())
	}
	if cfg.Liveness.Mode != "pidfile" {
		t.Fatalf("unexpected liveness mode: %q", cfg.Liveness.Mode)
	}
	if !cfg.Rotation.AnnounceReboot {
		t.Fatal("expected announce_reboot true")
	}
	if cfg.Daemon.LaunchTimeout != 30 {
		t.Fatalf("unexpected launch timeout: %d", cfg.Daemon.LaunchTimeout)
	}
}

func TestValidateRejectsBadLivenessMode(t *testing.T) {
	cfg := config.Default()
	cfg.Liveness.Mode = "dbus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported liveness mode")
	}
}

func TestValidateRejectsBackupSuffixWithSeparator(t *testing.T) {
	cfg := config.Default()
	cfg.Rotation.BackupSuffix = string(filepath.Separator) + "bak"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for backup suffix with separator")
	}
}

func TestValidateRejectsBadUSBIDs(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.USBEvents = true
	cfg.Watch.USBVendorID = "4d8"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for malformed usb vendor id")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Daemon.Entrypoint != "lightmeter_daemon.py" {
		t.Fatalf("unexpected entrypoint: %q", cfg.Daemon.Entrypoint)
	}
	if cfg.Watch.USBVendorID != "04d8" || cfg.Watch.USBModelID != "000c" {
		t.Fatalf("unexpected usb ids: %q %q", cfg.Watch.USBVendorID, cfg.Watch.USBModelID)
	}
}
