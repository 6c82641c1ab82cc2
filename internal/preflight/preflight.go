package preflight

import (
	"lightmeterctl/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Install root", cfg.Paths.InstallRoot),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckInterpreter(cfg),
		CheckEntrypoint(cfg),
	}

	results = append(results, CheckDiskSpace("Log directory space", cfg.Paths.LogDir, minFreeBytes))

	return results
}

// Passed reports whether every result in the slice passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
