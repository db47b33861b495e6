//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the test process in its own group and kills
// the whole group on cancel, so servers or timers spawned by learner code
// die with it.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
