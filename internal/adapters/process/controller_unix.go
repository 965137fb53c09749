//go:build !windows

package process

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

// listProcesses enumerates running processes via ps
func listProcesses() ([]ports.ProcessHandle, error) {
	cmd := exec.Command("ps", "-axo", "pid=,comm=")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var procs []ports.ProcessHandle
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		// comm may be a full path on some systems
		name := filepath.Base(strings.Join(fields[1:], " "))
		procs = append(procs, ports.ProcessHandle{PID: pid, Name: name})
	}
	return procs, nil
}

// SignalGraceful sends SIGTERM and reports whether it could be delivered
func (c *Controller) SignalGraceful(handle ports.ProcessHandle) bool {
	if err := unix.Kill(handle.PID, unix.SIGTERM); err != nil {
		logging.Logger.Debug("SIGTERM delivery failed", "pid", handle.PID, "error", err)
		return false
	}
	return true
}

// Kill sends SIGKILL. Killing an already-exited process is not an error.
func (c *Controller) Kill(handle ports.ProcessHandle) bool {
	err := unix.Kill(handle.PID, unix.SIGKILL)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return true
	}
	logging.Logger.Warn("SIGKILL failed", "pid", handle.PID, "error", err)
	return false
}

// IsRunning probes the process with signal 0
func (c *Controller) IsRunning(handle ports.ProcessHandle) bool {
	err := unix.Kill(handle.PID, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
