//go:build unix

package core

import (
	"os/exec"
	"syscall"
)

// configureProcess puts the shell in its own process group so a timeout
// kills the whole pipeline, not just the shell.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay
}
