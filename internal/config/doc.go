// Package config loads, normalizes, and validates lightmeterctl configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and keeps every knob the launcher needs in
// one place: daemon install root, virtualenv location, error-log paths,
// liveness strategy, and watch-mode triggers.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical log formats, and clear validation
// errors.
package config
