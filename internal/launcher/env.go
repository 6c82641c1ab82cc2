package launcher

import (
	"path/filepath"
	"strings"
)

// venvEnviron rewrites a process environment the way `bin/activate` would:
// VIRTUAL_ENV points at the venv, its bin directory heads PATH, and any
// PYTHONHOME is dropped so the interpreter uses the venv's stdlib.
func venvEnviron(environ []string, venvPath string) []string {
	if strings.TrimSpace(venvPath) == "" {
		return environ
	}
	binDir := filepath.Join(venvPath, "bin")

	out := make([]string, 0, len(environ)+2)
	pathSeen := false
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			out = append(out, entry)
			continue
		}
		switch key {
		case "VIRTUAL_ENV", "PYTHONHOME":
			continue
		case "PATH":
			pathSeen = true
			out = append(out, "PATH="+binDir+string(filepath.ListSeparator)+value)
		default:
			out = append(out, entry)
		}
	}
	if !pathSeen {
		out = append(out, "PATH="+binDir)
	}
	out = append(out, "VIRTUAL_ENV="+venvPath)
	return out
}
