//go:build unix

package main

import (
	"os/exec"
	"syscall"
)

// configureViewerProcess detaches the viewer so it outlives the CLI
func configureViewerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
