package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InstallRoot string `toml:"install_root"`
	LogDir      string `toml:"log_dir"`
}

// Daemon describes the external lightmeter daemon and how to launch it.
type Daemon struct {
	Python        string `toml:"python"`
	Entrypoint    string `toml:"entrypoint"`
	VenvDir       string `toml:"venv_dir"`
	ErrorLog      string `toml:"error_log"`
	PIDFile       string `toml:"pid_file"`
	LaunchTimeout int    `toml:"launch_timeout"`
}

// Liveness selects how an already-running daemon is detected.
type Liveness struct {
	// Mode is "name" (process-table scan by executable name, the historical
	// behavior) or "pidfile" (pid file written by the launcher).
	Mode        string `toml:"mode"`
	ProcessName string `toml:"process_name"`
}

// Rotation configures error-log rotation behavior.
type Rotation struct {
	BackupSuffix string `toml:"backup_suffix"`
	// AnnounceReboot prints the legacy reboot-intent message when a non-empty
	// error log is rotated. No reboot is ever performed.
	AnnounceReboot bool `toml:"announce_reboot"`
}

// Watch configures the long-running supervision loop.
type Watch struct {
	Interval    int    `toml:"interval"`
	USBEvents   bool   `toml:"usb_events"`
	USBVendorID string `toml:"usb_vendor_id"`
	USBModelID  string `toml:"usb_model_id"`
}

// Logging contains configuration for the launcher's own log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// History configures the SQLite cycle-history store.
type History struct {
	Enabled bool `toml:"enabled"`
	Keep    int  `toml:"keep"`
}

// Config encapsulates all configuration values for lightmeterctl.
//
// Sections by subsystem:
//   - Paths: daemon install root and launcher log directory
//   - Daemon: interpreter, entrypoint, virtualenv, error-log locations
//   - Liveness: already-running detection strategy
//   - Rotation: error-log rotation knobs
//   - Watch: interval and USB hotplug triggers for watch mode
//   - Logging: launcher log format, level, and retention
//   - History: cycle outcome persistence
type Config struct {
	Paths    Paths    `toml:"paths"`
	Daemon   Daemon   `toml:"daemon"`
	Liveness Liveness `toml:"liveness"`
	Rotation Rotation `toml:"rotation"`
	Watch    Watch    `toml:"watch"`
	Logging  Logging  `toml:"logging"`
	History  History  `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lightmeterctl/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lightmeterctl.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the launcher's log directory. The daemon install
// root is external and never created here.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// VenvPath returns the absolute virtualenv directory.
func (c *Config) VenvPath() string {
	return joinInstall(c.Paths.InstallRoot, c.Daemon.VenvDir)
}

// VenvInterpreterPath returns the interpreter installed inside the
// virtualenv. Callers must check the file exists before using it.
func (c *Config) VenvInterpreterPath() string {
	return filepath.Join(c.VenvPath(), "bin", c.Daemon.Python)
}

// EntrypointPath returns the absolute daemon entry point path.
func (c *Config) EntrypointPath() string {
	return joinInstall(c.Paths.InstallRoot, c.Daemon.Entrypoint)
}

// ErrorLogPath returns the absolute path of the daemon's error log.
func (c *Config) ErrorLogPath() string {
	return joinInstall(c.Paths.InstallRoot, c.Daemon.ErrorLog)
}

// BackupLogPath returns the rotation target for the error log.
func (c *Config) BackupLogPath() string {
	return c.ErrorLogPath() + c.Rotation.BackupSuffix
}

// PIDFilePath returns the absolute pid file path for the spawned daemon.
func (c *Config) PIDFilePath() string {
	return joinInstall(c.Paths.InstallRoot, c.Daemon.PIDFile)
}

// LockPath returns the advisory lock file guarding the run cycle.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "lightmeterctl.lock")
}

// HistoryDBPath returns the SQLite history database location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

func joinInstall(root, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return root
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(root, value)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
