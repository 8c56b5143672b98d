package mathimg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/sfu-bigdata/go-mdocx/internal/process"
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. Cancelling ctx kills the
// whole process group.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binaries come from trusted configuration
	cmd.Dir = dir
	process.SetProcessGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
		return nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
