//go:build !windows

package process

import (
	"fmt"
	"os/exec"
	"syscall"
)

// configureProcAttr starts cmd in its own process group so a later
// terminate/kill can reach every descendant it spawns, not just the direct
// child.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcessGroup sends SIGTERM to the whole process group.
func terminateProcessGroup(pid int) error {
	return signalProcessGroup(pid, syscall.SIGTERM)
}

// killProcessGroup sends SIGKILL to the whole process group.
func killProcessGroup(pid int) error {
	return signalProcessGroup(pid, syscall.SIGKILL)
}

func signalProcessGroup(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(-pid, sig); err != nil {
		if err2 := syscall.Kill(pid, sig); err2 != nil {
			return fmt.Errorf("failed to signal process group -%d: %v, also failed to signal process %d: %v", pid, err, pid, err2)
		}
	}
	return nil
}

func statusFromWaitErr(err error) Status {
	if err == nil {
		return Status{Kind: StatusExit, Code: 0}
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return Status{Kind: StatusExit, Code: -1}
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return Status{Kind: StatusExit, Code: exitErr.ExitCode()}
	}
	if ws.Signaled() {
		return Status{Kind: StatusSignal, Signal: int(ws.Signal())}
	}
	return Status{Kind: StatusExit, Code: ws.ExitStatus()}
}
