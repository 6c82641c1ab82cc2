package config

const (
	defaultInstallRoot      = "~/lightmeter"
	defaultLogDir           = "~/.local/share/lightmeterctl/logs"
	defaultPython           = "python3"
	defaultEntrypoint       = "lightmeter_daemon.py"
	defaultVenvDir          = ".venv"
	defaultErrorLog         = "lightmeter.err"
	defaultPIDFile          = "lightmeter.pid"
	defaultLivenessMode     = "name"
	defaultProcessName      = "python3"
	defaultBackupSuffix     = ".bak"
	defaultWatchInterval    = 300
	defaultUSBVendorID      = "04d8"
	defaultUSBModelID       = "000c"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultHistoryKeep      = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InstallRoot: defaultInstallRoot,
			LogDir:      defaultLogDir,
		},
		Daemon: Daemon{
			Python:     defaultPython,
			Entrypoint: defaultEntrypoint,
			VenvDir:    defaultVenvDir,
			ErrorLog:   defaultErrorLog,
			PIDFile:    defaultPIDFile,
		},
		Liveness: Liveness{
			Mode:        defaultLivenessMode,
			ProcessName: defaultProcessName,
		},
		Rotation: Rotation{
			BackupSuffix: defaultBackupSuffix,
		},
		Watch: Watch{
			Interval:    defaultWatchInterval,
			USBEvents:   true,
			USBVendorID: defaultUSBVendorID,
			USBModelID:  defaultUSBModelID,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
			Keep:    defaultHistoryKeep,
		},
	}
}
