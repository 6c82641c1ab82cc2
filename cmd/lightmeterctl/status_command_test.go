package main

import (
	"testing"
)

func TestStatusCommandSections(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "== Environment ==")
	requireContains(t, out, "== Last cycle ==")
	requireContains(t, out, "not running (pidfile probe)")
	requireContains(t, out, "no cycles recorded")
}

func TestStatusCommandAfterRun(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "manual trigger")
	requireContains(t, out, "Launched:")
}
