//go:build windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// configureProcAttr requests a new process group; Windows has no fork-style
// process-group signal delivery, so terminateProcessGroup/killProcessGroup
// fall back to terminating the direct child only.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

func terminateProcessGroup(pid int) error {
	return killProcessGroup(pid)
}

func killProcessGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}

func statusFromWaitErr(err error) Status {
	if err == nil {
		return Status{Kind: StatusExit, Code: 0}
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return Status{Kind: StatusExit, Code: -1}
	}
	return Status{Kind: StatusExit, Code: exitErr.ExitCode()}
}
