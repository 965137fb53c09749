package services

import (
	"context"
	"time"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

// exitConfirmPolls is how many consecutive empty polls WaitForExit needs
// before declaring the game gone. Launcher stubs exit and hand over to the
// real game process under a new PID; re-resolving the pattern with a
// confirmation poll rides over the gap.
const exitConfirmPolls = 2

// GameProcessMonitor watches for the tracked game's process appearing and
// disappearing by polling the process list
type GameProcessMonitor struct {
	procs        ports.ProcessController
	pollInterval time.Duration
}

// NewGameProcessMonitor creates a monitor polling at the given interval
func NewGameProcessMonitor(procs ports.ProcessController, pollInterval time.Duration) *GameProcessMonitor {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &GameProcessMonitor{procs: procs, pollInterval: pollInterval}
}

// WaitForStart blocks until a process matching pattern appears or ctx is
// cancelled
func (m *GameProcessMonitor) WaitForStart(ctx context.Context, pattern domain.ProcessPattern) (ports.ProcessHandle, error) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		handles, err := m.procs.FindRunning(pattern)
		if err != nil {
			// A listing hiccup is not a reason to give up the session
			logging.Logger.Warn("Process listing failed while waiting for game", "error", err)
		} else if len(handles) > 0 {
			return handles[0], nil
		}

		select {
		case <-ctx.Done():
			return ports.ProcessHandle{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForExit blocks until no process matches pattern anymore or ctx is
// cancelled. The pattern is re-resolved every poll rather than pinning the
// first PID, so a launcher stub being replaced by the real game process
// does not end the session.
func (m *GameProcessMonitor) WaitForExit(ctx context.Context, pattern domain.ProcessPattern) error {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	misses := 0
	for {
		handles, err := m.procs.FindRunning(pattern)
		if err != nil {
			logging.Logger.Warn("Process listing failed while watching game", "error", err)
		} else if len(handles) == 0 {
			misses++
			if misses >= exitConfirmPolls {
				return nil
			}
		} else {
			misses = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
