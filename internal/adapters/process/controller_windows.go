//go:build windows

package process

import (
	"encoding/csv"
	"os/exec"
	"strconv"
	"strings"

	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

// listProcesses enumerates running processes via tasklist
func listProcesses() ([]ports.ProcessHandle, error) {
	cmd := exec.Command("tasklist", "/fo", "csv", "/nh")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(string(output)))
	reader.FieldsPerRecord = -1

	var procs []ports.ProcessHandle
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if len(record) < 2 {
			continue
		}

		pid, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			continue
		}

		procs = append(procs, ports.ProcessHandle{PID: pid, Name: record[0]})
	}
	return procs, nil
}

// SignalGraceful asks the process to close its main window (taskkill
// without /f posts WM_CLOSE)
func (c *Controller) SignalGraceful(handle ports.ProcessHandle) bool {
	cmd := exec.Command("taskkill", "/pid", strconv.Itoa(handle.PID))
	if err := cmd.Run(); err != nil {
		logging.Logger.Debug("taskkill delivery failed", "pid", handle.PID, "error", err)
		return false
	}
	return true
}

// Kill forcefully terminates the process tree. Killing an already-exited
// process is not an error.
func (c *Controller) Kill(handle ports.ProcessHandle) bool {
	cmd := exec.Command("taskkill", "/f", "/t", "/pid", strconv.Itoa(handle.PID))
	if err := cmd.Run(); err != nil {
		if !c.IsRunning(handle) {
			return true
		}
		logging.Logger.Warn("taskkill /f failed", "pid", handle.PID, "error", err)
		return false
	}
	return true
}

// IsRunning reports whether the PID is still present in the task list
func (c *Controller) IsRunning(handle ports.ProcessHandle) bool {
	filter := "PID eq " + strconv.Itoa(handle.PID)
	cmd := exec.Command("tasklist", "/fi", filter, "/fo", "csv", "/nh")
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(output), `"`+strconv.Itoa(handle.PID)+`"`)
}
