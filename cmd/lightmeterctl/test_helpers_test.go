package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	installRoot string
	logDir      string
	configPath  string
}

// setupCLITestEnv writes a config with a fake daemon install: a venv
// interpreter stub that exits immediately and an entrypoint script. The
// pidfile liveness mode keeps probes independent of the host process table.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	installRoot := filepath.Join(base, "lightmeter")
	logDir := filepath.Join(base, "logs")

	binDir := filepath.Join(installRoot, ".venv", "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("create venv bin: %v", err)
	}
	stub := "#!/bin/sh\nexit 0\n"
	if err := os.WriteFile(filepath.Join(binDir, "python3"), []byte(stub), 0o755); err != nil {
		t.Fatalf("write interpreter stub: %v", err)
	}
	if err := os.WriteFile(filepath.Join(installRoot, "lightmeter_daemon.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatalf("write entrypoint: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, installRoot, logDir, false)

	return &cliTestEnv{
		installRoot: installRoot,
		logDir:      logDir,
		configPath:  configPath,
	}
}

func writeTestConfig(t *testing.T, path, installRoot, logDir string, announceReboot bool) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
install_root = %q
log_dir = %q

[liveness]
mode = "pidfile"

[rotation]
announce_reboot = %t

[logging]
level = "error"

[history]
enabled = true
keep = 10
`, installRoot, logDir, announceReboot)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func errorLogPath(env *cliTestEnv) string {
	return filepath.Join(env.installRoot, "lightmeter.err")
}
