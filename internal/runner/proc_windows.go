//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup detaches the test process from the console group.
// Cancel keeps the default Process.Kill.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
