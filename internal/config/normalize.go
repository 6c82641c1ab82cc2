package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDaemon()
	c.normalizeLiveness()
	c.normalizeRotation()
	c.normalizeWatch()
	c.normalizeLogging()
	c.normalizeHistory()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.InstallRoot) == "" {
		c.Paths.InstallRoot = defaultInstallRoot
	}
	if c.Paths.InstallRoot, err = expandPath(c.Paths.InstallRoot); err != nil {
		return fmt.Errorf("paths.install_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDaemon() {
	c.Daemon.Python = strings.TrimSpace(c.Daemon.Python)
	if c.Daemon.Python == "" {
		c.Daemon.Python = defaultPython
	}
	c.Daemon.Entrypoint = strings.TrimSpace(c.Daemon.Entrypoint)
	if c.Daemon.Entrypoint == "" {
		c.Daemon.Entrypoint = defaultEntrypoint
	}
	c.Daemon.VenvDir = strings.TrimSpace(c.Daemon.VenvDir)
	if c.Daemon.VenvDir == "" {
		c.Daemon.VenvDir = defaultVenvDir
	}
	c.Daemon.ErrorLog = strings.TrimSpace(c.Daemon.ErrorLog)
	if c.Daemon.ErrorLog == "" {
		c.Daemon.ErrorLog = defaultErrorLog
	}
	c.Daemon.PIDFile = strings.TrimSpace(c.Daemon.PIDFile)
	if c.Daemon.PIDFile == "" {
		c.Daemon.PIDFile = defaultPIDFile
	}
	if c.Daemon.LaunchTimeout < 0 {
		c.Daemon.LaunchTimeout = 0
	}
}

func (c *Config) normalizeLiveness() {
	c.Liveness.Mode = strings.ToLower(strings.TrimSpace(c.Liveness.Mode))
	if c.Liveness.Mode == "" {
		c.Liveness.Mode = defaultLivenessMode
	}
	c.Liveness.ProcessName = strings.TrimSpace(c.Liveness.ProcessName)
	if c.Liveness.ProcessName == "" {
		c.Liveness.ProcessName = defaultProcessName
	}
}

func (c *Config) normalizeRotation() {
	c.Rotation.BackupSuffix = strings.TrimSpace(c.Rotation.BackupSuffix)
	if c.Rotation.BackupSuffix == "" {
		c.Rotation.BackupSuffix = defaultBackupSuffix
	}
}

func (c *Config) normalizeWatch() {
	if c.Watch.Interval <= 0 {
		c.Watch.Interval = defaultWatchInterval
	}
	c.Watch.USBVendorID = strings.ToLower(strings.TrimSpace(c.Watch.USBVendorID))
	if c.Watch.USBVendorID == "" {
		c.Watch.USBVendorID = defaultUSBVendorID
	}
	c.Watch.USBModelID = strings.ToLower(strings.TrimSpace(c.Watch.USBModelID))
	if c.Watch.USBModelID == "" {
		c.Watch.USBModelID = defaultUSBModelID
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeHistory() {
	if c.History.Keep <= 0 {
		c.History.Keep = defaultHistoryKeep
	}
}
