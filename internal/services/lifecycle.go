package services

import (
	"context"
	"fmt"
	"sync"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

// PlanStep is one managed application paired with the action to perform on
// it at a session boundary
type PlanStep struct {
	App    domain.ManagedApplication
	Action domain.AppAction
}

// AppLifecycleManager maps configuration entries to concrete start/stop/
// toggle actions and owns per-application state, notably which hotkey
// suites were toggled this session.
type AppLifecycleManager struct {
	apps       map[string]domain.ManagedApplication
	procs      ports.ProcessController
	terminator *GracefulTerminator

	// toggled remembers the direction ToggleHotkeys took per app so the
	// reversal at session end is meaningful in logs and results. The
	// shutdown plan toggles apps from parallel goroutines, so access goes
	// through mu.
	mu      sync.Mutex
	toggled map[string]domain.ActionKind
}

// NewAppLifecycleManager creates a manager over the configured applications
func NewAppLifecycleManager(apps map[string]domain.ManagedApplication, procs ports.ProcessController, terminator *GracefulTerminator) *AppLifecycleManager {
	return &AppLifecycleManager{
		apps:       apps,
		procs:      procs,
		terminator: terminator,
		toggled:    make(map[string]domain.ActionKind),
	}
}

// BuildStartupPlan resolves a game's managed-app ids into ordered steps.
// Referenced ids are validated upstream, but a dangling reference still
// fails loudly here rather than silently skipping the application.
func (m *AppLifecycleManager) BuildStartupPlan(game domain.GameDefinition) ([]PlanStep, error) {
	steps := make([]PlanStep, 0, len(game.ManagedApps))
	for _, id := range game.ManagedApps {
		app, ok := m.apps[id]
		if !ok {
			return nil, fmt.Errorf("game %s references %q: %w", game.ID, id, domain.ErrUnknownApp)
		}
		steps = append(steps, PlanStep{App: app, Action: app.OnSessionStart})
	}
	return steps, nil
}

// BuildShutdownPlan returns end-of-session steps for the applications that
// were actually changed, in exact reverse start order
func (m *AppLifecycleManager) BuildShutdownPlan(startedApps []string) []PlanStep {
	steps := make([]PlanStep, 0, len(startedApps))
	for i := len(startedApps) - 1; i >= 0; i-- {
		app, ok := m.apps[startedApps[i]]
		if !ok {
			continue
		}
		steps = append(steps, PlanStep{App: app, Action: app.OnSessionEnd})
	}
	return steps
}

// StartApp launches the application unless a matching process already
// exists. Returns whether the environment was changed.
func (m *AppLifecycleManager) StartApp(ctx context.Context, app domain.ManagedApplication) (domain.StepResult, bool) {
	res := domain.StepResult{AppID: app.ID, Action: domain.ActionStart, Stage: domain.StageLaunch}

	running, err := m.procs.FindRunning(app.ProcessPattern)
	if err == nil && len(running) > 0 {
		res.Detail = fmt.Sprintf("already running (pid %d)", running[0].PID)
		return res, false
	}

	if app.ExecutablePath == "" {
		res.Err = fmt.Errorf("%s has no executablePath: %w", app.ID, domain.ErrLaunchFailed)
		return res, false
	}

	handle, err := m.procs.Launch(app.ExecutablePath, app.Args)
	if err != nil {
		res.Err = err
		return res, false
	}

	res.Detail = fmt.Sprintf("pid %d", handle.PID)
	return res, true
}

// StopApp terminates the application per its termination policy. Returns
// whether any process was actually acted on.
func (m *AppLifecycleManager) StopApp(ctx context.Context, app domain.ManagedApplication) (domain.StepResult, bool) {
	res := domain.StepResult{AppID: app.ID, Action: domain.ActionStop}

	term := m.terminator.Terminate(ctx, app)
	res.Detail = string(term.Outcome)
	res.Err = term.Err

	switch term.Outcome {
	case OutcomeExited:
		res.Stage = domain.StageGraceful
	case OutcomeForceKilled, OutcomeTimedOut:
		res.Stage = domain.StageForce
	default:
		res.Stage = domain.StageGraceful
	}

	return res, term.Outcome != OutcomeNotRunning
}

// ToggleHotkeys flips an on/off external tool: stop it when running, start
// it when not. The direction is recorded so the session-end toggle is the
// exact reversal.
func (m *AppLifecycleManager) ToggleHotkeys(ctx context.Context, app domain.ManagedApplication) (domain.StepResult, bool) {
	running, err := m.procs.FindRunning(app.ProcessPattern)
	if err != nil {
		return domain.StepResult{AppID: app.ID, Action: domain.ActionToggleHotkeys, Err: err}, false
	}

	var res domain.StepResult
	var changed bool
	var direction domain.ActionKind
	if len(running) > 0 {
		res, changed = m.StopApp(ctx, app)
		direction = domain.ActionStop
	} else {
		res, changed = m.StartApp(ctx, app)
		direction = domain.ActionStart
	}

	m.mu.Lock()
	m.toggled[app.ID] = direction
	m.mu.Unlock()

	res.Action = domain.ActionToggleHotkeys
	if changed {
		logging.Logger.Debug("Toggled hotkey tool", "app", app.ID, "direction", direction)
	}
	return res, changed
}

// ToggledDirection reports how an app was toggled this session, if at all
func (m *AppLifecycleManager) ToggledDirection(appID string) (domain.ActionKind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir, ok := m.toggled[appID]
	return dir, ok
}
