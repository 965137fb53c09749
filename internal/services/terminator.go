package services

import (
	"context"
	"fmt"
	"time"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

// DefaultPollInterval is the process-exit poll cadence; tests shorten it
const DefaultPollInterval = 250 * time.Millisecond

// TerminationOutcome describes how a termination request ended
type TerminationOutcome string

const (
	OutcomeNotRunning  TerminationOutcome = "not-running"
	OutcomeExited      TerminationOutcome = "exited"
	OutcomeForceKilled TerminationOutcome = "force-killed"
	OutcomeTimedOut    TerminationOutcome = "timed-out"
)

// TerminationResult is the aggregate outcome over an application's matching
// processes (usually one)
type TerminationResult struct {
	AppID   string
	Outcome TerminationOutcome
	Err     error
}

// GracefulTerminator executes the per-application termination policy:
// cooperative signal, bounded wait, then force-kill exactly once.
type GracefulTerminator struct {
	procs        ports.ProcessController
	pollInterval time.Duration
}

// NewGracefulTerminator creates a terminator polling at the given interval
func NewGracefulTerminator(procs ports.ProcessController, pollInterval time.Duration) *GracefulTerminator {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &GracefulTerminator{procs: procs, pollInterval: pollInterval}
}

// Terminate stops every process matching the application's pattern
// according to its termination policy
func (t *GracefulTerminator) Terminate(ctx context.Context, app domain.ManagedApplication) TerminationResult {
	handles, err := t.procs.FindRunning(app.ProcessPattern)
	if err != nil {
		return TerminationResult{AppID: app.ID, Outcome: OutcomeNotRunning, Err: err}
	}
	if len(handles) == 0 {
		return TerminationResult{AppID: app.ID, Outcome: OutcomeNotRunning}
	}

	result := TerminationResult{AppID: app.ID, Outcome: OutcomeExited}
	for _, handle := range handles {
		outcome, err := t.terminateOne(ctx, app, handle)
		if severity(outcome) > severity(result.Outcome) {
			result.Outcome = outcome
		}
		if err != nil && result.Err == nil {
			result.Err = err
		}
	}

	logging.Logger.Info("Terminated application",
		"app", app.ID, "policy", app.Termination.Policy, "outcome", result.Outcome)
	return result
}

func (t *GracefulTerminator) terminateOne(ctx context.Context, app domain.ManagedApplication, handle ports.ProcessHandle) (TerminationOutcome, error) {
	spec := app.Termination

	if spec.Policy == domain.PolicyForce {
		if t.procs.Kill(handle) {
			return OutcomeForceKilled, nil
		}
		return OutcomeTimedOut, fmt.Errorf("%s: force kill of pid %d failed", app.ID, handle.PID)
	}

	if t.procs.SignalGraceful(handle) {
		if t.waitForExit(ctx, handle, spec.GracefulTimeout) {
			return OutcomeExited, nil
		}
	}

	if spec.Policy == domain.PolicyGraceful {
		return OutcomeTimedOut, fmt.Errorf("%s: pid %d did not exit within %s: %w",
			app.ID, handle.PID, spec.GracefulTimeout, domain.ErrTimeout)
	}

	// Auto: force-kill exactly once after the graceful timeout elapsed
	if t.procs.Kill(handle) {
		return OutcomeForceKilled, nil
	}
	return OutcomeTimedOut, fmt.Errorf("%s: force kill of pid %d failed", app.ID, handle.PID)
}

// waitForExit polls until the process is gone, the timeout elapses, or ctx
// is cancelled. Total wait never exceeds timeout + one poll interval.
func (t *GracefulTerminator) waitForExit(ctx context.Context, handle ports.ProcessHandle, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		if !t.procs.IsRunning(handle) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return !t.procs.IsRunning(handle)
		case <-ticker.C:
		}
	}
}

func severity(o TerminationOutcome) int {
	switch o {
	case OutcomeNotRunning:
		return 0
	case OutcomeExited:
		return 1
	case OutcomeForceKilled:
		return 2
	case OutcomeTimedOut:
		return 3
	default:
		return 4
	}
}
