package shell

import (
	"os"
	"runtime"
)

// DefaultShell returns the platform shell: $SHELL or /bin/bash on Unix;
// powershell.exe when PSModulePath is set, otherwise cmd.exe, on Windows.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		if os.Getenv("PSModulePath") != "" {
			return "powershell.exe"
		}
		return "cmd.exe"
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/bash"
}
