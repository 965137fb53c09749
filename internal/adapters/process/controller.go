package process

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

// Controller implements ports.ProcessController with OS tools (ps on unix,
// tasklist/taskkill on windows), the same way the rest of the system shells
// out for process inspection.
type Controller struct{}

// Compile-time interface verification
var _ ports.ProcessController = (*Controller)(nil)

// NewController creates a new OS process controller
func NewController() *Controller {
	return &Controller{}
}

// FindRunning resolves a pattern against the current process list. An empty
// result is normal, never an error.
func (c *Controller) FindRunning(pattern domain.ProcessPattern) ([]ports.ProcessHandle, error) {
	if pattern.IsEmpty() {
		return nil, nil
	}

	procs, err := listProcesses()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var matches []ports.ProcessHandle
	for _, p := range procs {
		if pattern.Matches(p.Name) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Launch starts the executable at path. It does not retry and fails with
// domain.ErrLaunchFailed when the path is missing or the OS refuses.
func (c *Controller) Launch(path string, args []string) (ports.ProcessHandle, error) {
	if _, err := os.Stat(path); err != nil {
		return ports.ProcessHandle{}, fmt.Errorf("%s: %v: %w", path, err, domain.ErrLaunchFailed)
	}

	cmd := exec.Command(path, args...)
	cmd.Dir = filepath.Dir(path)

	if err := cmd.Start(); err != nil {
		return ports.ProcessHandle{}, fmt.Errorf("%s: %v: %w", path, err, domain.ErrLaunchFailed)
	}

	handle := ports.ProcessHandle{
		PID:  cmd.Process.Pid,
		Name: filepath.Base(path),
	}

	logging.Logger.Debug("Launched process", "path", path, "pid", handle.PID)

	// Reap the child when it exits so launched processes never zombify
	go func() {
		_ = cmd.Wait()
	}()

	return handle, nil
}
