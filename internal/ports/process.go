package ports

import "gamerig/internal/domain"

// ProcessHandle identifies one running OS process
type ProcessHandle struct {
	PID  int
	Name string
}

// ProcessController provides low-level start/stop/poll of OS processes.
// FindRunning never fails for "not found"; an empty slice is a normal
// result. Kill is idempotent: killing an already-exited handle is not an
// error.
type ProcessController interface {
	// FindRunning resolves a pattern against current OS processes
	FindRunning(pattern domain.ProcessPattern) ([]ProcessHandle, error)

	// Launch starts a process; wraps domain.ErrLaunchFailed when the path
	// does not exist or the OS refuses. Does not retry.
	Launch(path string, args []string) (ProcessHandle, error)

	// SignalGraceful requests cooperative shutdown and reports whether the
	// signal could be delivered, not whether the process exited
	SignalGraceful(handle ProcessHandle) bool

	// Kill unconditionally terminates the process
	Kill(handle ProcessHandle) bool

	// IsRunning reports whether the handle's process still exists
	IsRunning(handle ProcessHandle) bool
}
