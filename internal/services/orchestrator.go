package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

// SessionOrchestrator drives one complete game session: startup plan, game
// monitoring, shutdown plan with rollback. It exclusively owns the session
// state (started apps, open integration channels, captured parameter
// snapshots); nothing mutates it from outside. An orchestrator instance is
// not reused across sessions.
type SessionOrchestrator struct {
	game      domain.GameDefinition
	lifecycle *AppLifecycleManager
	monitor   *GameProcessMonitor
	opener    ports.IntegrationOpener
	manual    ports.ManualControl

	phase       domain.SessionPhase
	startedApps []string
	handles     map[string]ports.IntegrationChannel
	snapshots   map[string][]domain.Assignment
	steps       []domain.StepResult

	startupFailed  bool
	rollbackFailed bool
}

// NewSessionOrchestrator creates an orchestrator for one session of game
func NewSessionOrchestrator(
	game domain.GameDefinition,
	lifecycle *AppLifecycleManager,
	monitor *GameProcessMonitor,
	opener ports.IntegrationOpener,
	manual ports.ManualControl,
) *SessionOrchestrator {
	return &SessionOrchestrator{
		game:      game,
		lifecycle: lifecycle,
		monitor:   monitor,
		opener:    opener,
		manual:    manual,
		phase:     domain.PhaseIdle,
		handles:   make(map[string]ports.IntegrationChannel),
		snapshots: make(map[string][]domain.Assignment),
	}
}

// Run executes the session end to end and always returns a result; it
// never panics the environment into a half-configured state. Cancelling
// ctx at any point triggers the shutdown plan before Run returns.
func (o *SessionOrchestrator) Run(ctx context.Context) domain.SessionResult {
	result := domain.SessionResult{
		SessionID: uuid.New().String(),
		GameID:    o.game.ID,
		GameName:  o.game.DisplayName,
		StartedAt: time.Now().UTC(),
	}

	o.transition(domain.PhaseStartingUp)
	o.startup(ctx)

	if !o.startupFailed && ctx.Err() == nil {
		o.transition(domain.PhaseMonitoring)
		o.monitorGame(ctx)
	}

	o.transition(domain.PhaseShuttingDown)
	// Cleanup must run to completion even after an operator interrupt
	o.shutdown(context.WithoutCancel(ctx), o.startupFailed)

	if o.startupFailed || o.rollbackFailed {
		o.transition(domain.PhaseFailed)
	} else {
		o.transition(domain.PhaseCompleted)
	}

	result.EndedAt = time.Now().UTC()
	result.Phase = o.phase
	result.Steps = o.steps
	result.OverallSuccess = o.phase == domain.PhaseCompleted
	return result
}

// startup executes the startup plan in declaration order. The first failed
// step stops the plan: nothing beyond it is ever started, and the apps
// changed so far are rolled back by the shutdown plan.
func (o *SessionOrchestrator) startup(ctx context.Context) {
	plan, err := o.lifecycle.BuildStartupPlan(o.game)
	if err != nil {
		o.record(domain.StepResult{AppID: o.game.ID, Action: domain.ActionNone, Err: err})
		o.startupFailed = true
		return
	}

	for _, step := range plan {
		if ctx.Err() != nil {
			logging.Logger.Info("Startup interrupted", "game", o.game.ID)
			return
		}

		res, changed := o.executeStart(ctx, step)
		o.record(res)
		if changed {
			// startedApps only grows here, never during any other phase
			o.startedApps = append(o.startedApps, step.App.ID)
		}
		if !res.OK() {
			o.startupFailed = true
			return
		}
	}
}

// executeStart dispatches one startup step by action kind. The second
// return value reports whether the environment was changed, which is what
// scopes the shutdown plan.
func (o *SessionOrchestrator) executeStart(ctx context.Context, step PlanStep) (domain.StepResult, bool) {
	switch step.Action.Kind {
	case domain.ActionNone:
		return domain.StepResult{AppID: step.App.ID, Action: domain.ActionNone}, false
	case domain.ActionStart:
		return o.lifecycle.StartApp(ctx, step.App)
	case domain.ActionStop:
		return o.lifecycle.StopApp(ctx, step.App)
	case domain.ActionToggleHotkeys:
		return o.lifecycle.ToggleHotkeys(ctx, step.App)
	case domain.ActionIntegration:
		return o.startIntegration(ctx, step)
	default:
		// Unknown kinds are rejected at configuration time; reaching this
		// is a programming error worth failing the session over
		return domain.StepResult{
			AppID:  step.App.ID,
			Action: step.Action.Kind,
			Err:    fmt.Errorf("unhandled action kind %q", step.Action.Kind),
		}, false
	}
}

// startIntegration connects the app's control channel, captures the
// current value of every parameter the action touches, then applies the
// action's assignments. The snapshot lives here, not in the channel, so it
// survives the channel being torn down and reopened.
func (o *SessionOrchestrator) startIntegration(ctx context.Context, step PlanStep) (domain.StepResult, bool) {
	app := step.App
	res := domain.StepResult{AppID: app.ID, Action: domain.ActionIntegration, Detail: step.Action.Integration}

	ch, err := o.opener.Open(app)
	if err != nil {
		res.Stage = domain.StageConnect
		res.Err = err
		return res, false
	}

	if err := ch.Connect(ctx); err != nil {
		res.Stage = domain.StageConnect
		if errors.Is(err, domain.ErrAuthFailed) {
			res.Stage = domain.StageAuth
		}
		res.Err = err
		_ = ch.Close()
		return res, false
	}

	// The channel is open from here on: the app counts as changed and the
	// shutdown plan owns closing the handle
	o.handles[app.ID] = ch

	assignments, ok := app.Integration.Actions[step.Action.Integration]
	if !ok {
		res.Stage = domain.StageApply
		res.Err = fmt.Errorf("action %q not configured for %s: %w",
			step.Action.Integration, app.ID, domain.ErrInvalidParameter)
		return res, true
	}

	var captureErrs []error
	var snapshot []domain.Assignment
	var applicable []domain.Assignment
	seen := make(map[string]bool)

	for _, a := range assignments {
		if !seen[a.Name] {
			seen[a.Name] = true
			current, err := ch.GetParameter(ctx, a.Name)
			if err != nil {
				// Never change a parameter that cannot be restored
				captureErrs = append(captureErrs, fmt.Errorf("capture %s: %w", a.Name, err))
				continue
			}
			snapshot = append(snapshot, domain.Assignment{Name: a.Name, Value: current})
		}
		if snapshotHas(snapshot, a.Name) {
			applicable = append(applicable, a)
		}
	}
	o.snapshots[app.ID] = snapshot

	var applyErrs []error
	for _, f := range ch.ApplyProfile(ctx, applicable) {
		applyErrs = append(applyErrs, f)
	}

	switch {
	case len(captureErrs) > 0:
		res.Stage = domain.StageCapture
		res.Err = errors.Join(append(captureErrs, applyErrs...)...)
	case len(applyErrs) > 0:
		res.Stage = domain.StageApply
		res.Err = errors.Join(applyErrs...)
	}
	return res, true
}

// monitorGame blocks until the game session is over: process exit for
// tracked games, explicit confirmation for manual sessions, or operator
// cancellation.
func (o *SessionOrchestrator) monitorGame(ctx context.Context) {
	if o.game.IsManual() {
		logging.Logger.Info("Manual session running", "game", o.game.ID)
		if err := o.manual.WaitForEnd(ctx, o.game.DisplayName); err != nil && !errors.Is(err, context.Canceled) {
			logging.Logger.Warn("Manual session wait ended abnormally", "game", o.game.ID, "error", err)
		}
		return
	}

	handle, err := o.monitor.WaitForStart(ctx, o.game.ProcessPattern)
	if err != nil {
		return // cancelled while waiting for the game to appear
	}
	logging.Logger.Info("Game started", "game", o.game.ID, "pid", handle.PID, "process", handle.Name)

	if err := o.monitor.WaitForExit(ctx, o.game.ProcessPattern); err != nil {
		logging.Logger.Info("Session interrupted", "game", o.game.ID)
		return
	}
	logging.Logger.Info("Game exited", "game", o.game.ID)
}

// shutdown executes the shutdown plan over the apps that were actually
// changed, in parallel (apps are independent; per-app ordering closes the
// integration channel before the process is touched). Best-effort: every
// app is torn down regardless of sibling failures, and the plan is joined
// before the phase transition.
func (o *SessionOrchestrator) shutdown(ctx context.Context, rollback bool) {
	plan := o.lifecycle.BuildShutdownPlan(o.startedApps)
	results := make([][]domain.StepResult, len(plan))

	var g errgroup.Group
	for i, step := range plan {
		// Hand each goroutine its app's channel and snapshot up front so
		// the session-state maps are only ever touched from this goroutine
		ch := o.handles[step.App.ID]
		delete(o.handles, step.App.ID)
		snapshot := o.snapshots[step.App.ID]
		delete(o.snapshots, step.App.ID)

		g.Go(func() error {
			results[i] = o.teardownApp(ctx, step, ch, snapshot, rollback)
			return nil
		})
	}
	_ = g.Wait()

	for _, appResults := range results {
		for _, res := range appResults {
			o.record(res)
			if !res.OK() && !isShutdownWarning(res) {
				o.rollbackFailed = true
			}
		}
	}

	if o.rollbackFailed {
		o.record(domain.StepResult{
			AppID:  o.game.ID,
			Action: domain.ActionNone,
			Stage:  domain.StageRestore,
			Detail: "environment may not be fully restored",
			Err:    domain.ErrRollbackFailed,
		})
	}

	// Channels for apps that never made it into the plan (or whose step
	// was skipped) are still released: every exit path closes every handle
	for id, ch := range o.handles {
		if err := ch.Close(); err != nil {
			logging.Logger.Warn("Closing integration channel failed", "app", id, "error", err)
		}
		delete(o.handles, id)
	}

	// startedApps only shrinks here, and only to empty: each app was torn
	// down exactly once above
	o.startedApps = nil
}

// teardownApp reverses one application's session changes: the configured
// end action, the captured-parameter restore, the channel close, then the
// process-level action.
func (o *SessionOrchestrator) teardownApp(ctx context.Context, step PlanStep, ch ports.IntegrationChannel, snapshot []domain.Assignment, rollback bool) []domain.StepResult {
	app := step.App
	var results []domain.StepResult

	if ch != nil {
		endSet := make(map[string]bool)

		// The explicit end action is skipped during rollback: a session
		// that never ran restores the snapshot and nothing else
		if !rollback && step.Action.Kind == domain.ActionIntegration {
			res := domain.StepResult{AppID: app.ID, Action: domain.ActionIntegration, Stage: domain.StageApply, Detail: step.Action.Integration}
			if assignments, ok := app.Integration.Actions[step.Action.Integration]; ok {
				var errs []error
				for _, f := range ch.ApplyProfile(ctx, assignments) {
					errs = append(errs, f)
				}
				for _, a := range assignments {
					endSet[a.Name] = true
				}
				res.Err = errors.Join(errs...)
			} else {
				res.Err = fmt.Errorf("action %q not configured for %s: %w",
					step.Action.Integration, app.ID, domain.ErrInvalidParameter)
			}
			results = append(results, res)
		}

		if res, ok := restoreSnapshot(ctx, app, ch, snapshot, endSet); ok {
			results = append(results, res)
		}
	}

	closeChannel := func() {
		if ch == nil {
			return
		}
		if err := ch.Close(); err != nil {
			results = append(results, domain.StepResult{
				AppID: app.ID, Action: domain.ActionIntegration, Stage: domain.StageClose, Err: err,
			})
		}
		ch = nil
	}

	// Some control libraries misbehave when their application dies with
	// the channel still open; CloseBeforeKill sequences the close ahead
	// of the process-level action
	if app.HasIntegration() && app.Integration.CloseBeforeKill {
		closeChannel()
	}

	switch step.Action.Kind {
	case domain.ActionStart:
		res, _ := o.lifecycle.StartApp(ctx, app)
		results = append(results, res)
	case domain.ActionStop:
		res, _ := o.lifecycle.StopApp(ctx, app)
		results = append(results, res)
	case domain.ActionToggleHotkeys:
		res, _ := o.lifecycle.ToggleHotkeys(ctx, app)
		results = append(results, res)
	case domain.ActionNone, domain.ActionIntegration:
		// No process-level reversal
	}

	closeChannel()
	return results
}

// restoreSnapshot replays the values captured at session start, skipping
// parameters the end action already set. When the channel died mid-session
// it is reopened once; the snapshot itself outlives any connection.
func restoreSnapshot(ctx context.Context, app domain.ManagedApplication, ch ports.IntegrationChannel, snapshot []domain.Assignment, skip map[string]bool) (domain.StepResult, bool) {
	if len(snapshot) == 0 {
		return domain.StepResult{}, false
	}

	res := domain.StepResult{AppID: app.ID, Action: domain.ActionIntegration, Stage: domain.StageRestore}

	reconnected := false
	var errs []error
	for _, a := range snapshot {
		if skip[a.Name] {
			continue
		}

		err := ch.SetParameter(ctx, a.Name, a.Value)
		if err != nil && !reconnected && (errors.Is(err, domain.ErrNotConnected) || errors.Is(err, domain.ErrProtocol)) {
			reconnected = true
			if cerr := ch.Connect(ctx); cerr == nil {
				err = ch.SetParameter(ctx, a.Name, a.Value)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", a.Name, err))
		}
	}

	res.Err = errors.Join(errs...)
	return res, true
}

// isShutdownWarning separates tolerated shutdown outcomes from rollback
// failures: a Graceful-policy app that refused to exit is surfaced as a
// warning, not a failed rollback.
func isShutdownWarning(res domain.StepResult) bool {
	if !errors.Is(res.Err, domain.ErrTimeout) {
		return false
	}
	return res.Action == domain.ActionStop || res.Action == domain.ActionToggleHotkeys
}

// record appends a step result and logs it
func (o *SessionOrchestrator) record(res domain.StepResult) {
	o.steps = append(o.steps, res)
	if res.OK() {
		logging.Logger.Info("Step completed", "app", res.AppID, "action", res.Action, "detail", res.Detail)
	} else {
		logging.Logger.Error("Step failed", "app", res.AppID, "action", res.Action, "stage", res.Stage, "error", res.Err)
	}
}

// transition moves the state machine forward; terminal phases are final
func (o *SessionOrchestrator) transition(phase domain.SessionPhase) {
	if o.phase.Terminal() {
		return
	}
	logging.Logger.Info("Session phase", "game", o.game.ID, "from", o.phase, "to", phase)
	o.phase = phase
}

func snapshotHas(snapshot []domain.Assignment, name string) bool {
	for _, s := range snapshot {
		if s.Name == name {
			return true
		}
	}
	return false
}
