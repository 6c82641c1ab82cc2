package launcher

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"lightmeterctl/internal/logging"
)

func writeFakeVenv(t *testing.T, root string) string {
	t.Helper()
	venv := filepath.Join(root, ".venv")
	binDir := filepath.Join(venv, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir venv bin: %v", err)
	}
	python := filepath.Join(binDir, "python3")
	if err := os.WriteFile(python, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write fake python: %v", err)
	}
	return venv
}

func TestVenvEnvironActivatesExplicitly(t *testing.T) {
	base := []string{
		"PATH=/usr/bin:/bin",
		"PYTHONHOME=/opt/python",
		"VIRTUAL_ENV=/old/venv",
		"HOME=/home/observer",
	}
	env := venvEnviron(base, "/srv/lightmeter/.venv")

	joined := strings.Join(env, "\n")
	if !strings.Contains(joined, "PATH=/srv/lightmeter/.venv/bin"+string(filepath.ListSeparator)+"/usr/bin:/bin") {
		t.Fatalf("expected venv bin to head PATH, env:\n%s", joined)
	}
	if strings.Contains(joined, "PYTHONHOME") {
		t.Fatalf("expected PYTHONHOME removed, env:\n%s", joined)
	}
	if !strings.Contains(joined, "VIRTUAL_ENV=/srv/lightmeter/.venv") {
		t.Fatalf("expected VIRTUAL_ENV set, env:\n%s", joined)
	}
	if strings.Contains(joined, "VIRTUAL_ENV=/old/venv") {
		t.Fatalf("expected stale VIRTUAL_ENV dropped, env:\n%s", joined)
	}
	if !strings.Contains(joined, "HOME=/home/observer") {
		t.Fatalf("expected unrelated vars preserved, env:\n%s", joined)
	}
}

func TestVenvEnvironWithoutVenvIsIdentity(t *testing.T) {
	base := []string{"PATH=/usr/bin"}
	env := venvEnviron(base, "")
	if len(env) != 1 || env[0] != "PATH=/usr/bin" {
		t.Fatalf("unexpected env: %v", env)
	}
}

func TestRunBuildsBlockingCommand(t *testing.T) {
	root := t.TempDir()
	venv := writeFakeVenv(t, root)
	entrypoint := filepath.Join(root, "lightmeter_daemon.py")
	if err := os.WriteFile(entrypoint, []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatalf("write entrypoint: %v", err)
	}
	errLog := filepath.Join(root, "lightmeter.err")

	var captured *exec.Cmd
	l := New(Options{
		InstallRoot:  root,
		VenvPath:     venv,
		Python:       "python3",
		Entrypoint:   entrypoint,
		ErrorLogPath: errLog,
	}, logging.NewNop()).WithRunner(func(cmd *exec.Cmd) error {
		captured = cmd
		return nil
	})

	code, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if captured == nil {
		t.Fatal("expected runner invocation")
	}
	if captured.Dir != root {
		t.Fatalf("expected working dir %q, got %q", root, captured.Dir)
	}
	if captured.Path != filepath.Join(venv, "bin", "python3") {
		t.Fatalf("expected venv interpreter, got %q", captured.Path)
	}
	if len(captured.Args) != 2 || captured.Args[1] != entrypoint {
		t.Fatalf("unexpected args: %v", captured.Args)
	}
	joined := strings.Join(captured.Env, "\n")
	if !strings.Contains(joined, "VIRTUAL_ENV="+venv) {
		t.Fatalf("expected VIRTUAL_ENV in child env:\n%s", joined)
	}
	if _, err := os.Stat(errLog); err != nil {
		t.Fatalf("expected error log created for stderr: %v", err)
	}
}

func TestRunRejectsMissingEntrypoint(t *testing.T) {
	root := t.TempDir()
	venv := writeFakeVenv(t, root)

	l := New(Options{
		InstallRoot:  root,
		VenvPath:     venv,
		Python:       "python3",
		Entrypoint:   filepath.Join(root, "absent.py"),
		ErrorLogPath: filepath.Join(root, "lightmeter.err"),
	}, logging.NewNop())

	if _, err := l.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing entrypoint")
	}
}

func TestResolveInterpreterFallsBackToPath(t *testing.T) {
	// No venv binary present; "sh" should resolve from PATH.
	resolved, err := resolveInterpreter(t.TempDir(), "sh")
	if err != nil {
		t.Fatalf("resolveInterpreter: %v", err)
	}
	if !filepath.IsAbs(resolved) {
		t.Fatalf("expected absolute path, got %q", resolved)
	}
}
