package domain

import (
	"fmt"
	"time"
)

// SessionPhase is the orchestrator's state-machine phase
type SessionPhase string

const (
	PhaseIdle         SessionPhase = "idle"
	PhaseStartingUp   SessionPhase = "starting-up"
	PhaseMonitoring   SessionPhase = "monitoring"
	PhaseShuttingDown SessionPhase = "shutting-down"
	PhaseCompleted    SessionPhase = "completed"
	PhaseFailed       SessionPhase = "failed"
)

// Terminal reports whether the phase is final
func (p SessionPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// Step stages reported in results so a failure always names where in an
// application's lifecycle it happened.
const (
	StageLaunch   = "launch"
	StageConnect  = "connect"
	StageAuth     = "auth"
	StageCapture  = "capture"
	StageApply    = "apply"
	StageGraceful = "graceful"
	StageForce    = "force"
	StageRestore  = "restore"
	StageClose    = "close"
)

// StepResult records the outcome of one lifecycle step for one application
type StepResult struct {
	AppID  string
	Action ActionKind
	Stage  string
	Detail string
	Err    error
}

// OK reports whether the step succeeded
func (r StepResult) OK() bool { return r.Err == nil }

func (r StepResult) String() string {
	if r.Err == nil {
		if r.Detail != "" {
			return fmt.Sprintf("%s %s: ok (%s)", r.AppID, r.Action, r.Detail)
		}
		return fmt.Sprintf("%s %s: ok", r.AppID, r.Action)
	}
	return fmt.Sprintf("%s %s [%s]: %v", r.AppID, r.Action, r.Stage, r.Err)
}

// SessionResult is what RunSession hands back to the caller. The process
// exit code and any UI state are derived from it by the caller.
type SessionResult struct {
	SessionID      string
	GameID         string
	GameName       string
	Phase          SessionPhase
	StartedAt      time.Time
	EndedAt        time.Time
	Steps          []StepResult
	OverallSuccess bool
}

// Errors returns every failed step
func (r *SessionResult) Errors() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}
