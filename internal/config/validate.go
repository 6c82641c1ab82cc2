package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLiveness(); err != nil {
		return err
	}
	if err := c.validateRotation(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if strings.TrimSpace(c.Daemon.Python) == "" {
		return errors.New("daemon.python must be set")
	}
	if strings.TrimSpace(c.Daemon.Entrypoint) == "" {
		return errors.New("daemon.entrypoint must be set")
	}
	if strings.TrimSpace(c.Daemon.ErrorLog) == "" {
		return errors.New("daemon.error_log must be set")
	}
	return nil
}

func (c *Config) validateLiveness() error {
	switch c.Liveness.Mode {
	case "name":
		if c.Liveness.ProcessName == "" {
			return errors.New("liveness.process_name must be set when liveness.mode is \"name\"")
		}
	case "pidfile":
		if strings.TrimSpace(c.Daemon.PIDFile) == "" {
			return errors.New("daemon.pid_file must be set when liveness.mode is \"pidfile\"")
		}
	default:
		return fmt.Errorf("liveness.mode: unsupported value %q (expected \"name\" or \"pidfile\")", c.Liveness.Mode)
	}
	return nil
}

func (c *Config) validateRotation() error {
	suffix := c.Rotation.BackupSuffix
	if suffix == "" {
		return errors.New("rotation.backup_suffix must be set")
	}
	if strings.ContainsRune(suffix, filepath.Separator) {
		return fmt.Errorf("rotation.backup_suffix %q must not contain path separators", suffix)
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.Interval <= 0 {
		return errors.New("watch.interval must be positive (seconds)")
	}
	if c.Watch.USBEvents {
		if len(c.Watch.USBVendorID) != 4 || len(c.Watch.USBModelID) != 4 {
			return errors.New("watch.usb_vendor_id and watch.usb_model_id must be 4 hex digits when watch.usb_events is true")
		}
	}
	return nil
}
