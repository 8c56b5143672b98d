//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// SetProcessGroup is a no-op on Windows: taskkill /T walks the process tree.
func SetProcessGroup(*exec.Cmd) {}

// KillProcessGroup kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; callers fall back to killing the process itself
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is an integer
}
