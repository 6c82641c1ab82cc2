// Package logging builds the launcher's slog loggers.
//
// It provides a console handler for interactive use, a JSON handler for
// machine consumption, typed attribute helpers, and retention pruning for
// the launcher's own per-run log files.
package logging
