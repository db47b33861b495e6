//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// configureViewerProcess detaches the viewer from the console
func configureViewerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
