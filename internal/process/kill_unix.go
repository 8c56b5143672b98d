//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup starts cmd in its own process group so that
// KillProcessGroup also reaches the children it spawns.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; callers fall back to killing the process itself
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
