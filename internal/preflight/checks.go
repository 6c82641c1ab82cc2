package preflight

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"lightmeterctl/internal/config"
)

// minFreeBytes is the low-water mark for the log directory. Rotation
// keeps at most one backup, but per-run logs accumulate between
// retention sweeps.
const minFreeBytes = 64 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckInterpreter verifies that a usable Python interpreter exists.
// The venv interpreter wins when the venv directory is configured;
// otherwise the configured command must resolve on PATH.
func CheckInterpreter(cfg *config.Config) Result {
	const name = "Python interpreter"

	if venv := cfg.VenvPath(); venv != "" {
		candidate := cfg.VenvInterpreterPath()
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (venv)", candidate)}
		}
	}

	path, err := exec.LookPath(cfg.Daemon.Python)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found on PATH)", cfg.Daemon.Python)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (system)", path)}
}

// CheckEntrypoint verifies that the daemon script exists under the install root.
func CheckEntrypoint(cfg *config.Config) Result {
	const name = "Daemon entrypoint"

	path := cfg.EntrypointPath()
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDiskSpace verifies that the filesystem holding path has at least
// min bytes free.
func CheckDiskSpace(name, path string, min uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < min {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %d MiB free, need %d MiB)", path, free>>20, min>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", path, free>>20)}
}
