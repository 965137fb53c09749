package domain

import (
	"fmt"
	"time"
)

// ActionKind enumerates what can be done to a managed application at a
// session boundary. Unknown kinds are rejected at configuration time, not
// at dispatch time.
type ActionKind string

const (
	ActionNone          ActionKind = "none"
	ActionStart         ActionKind = "start"
	ActionStop          ActionKind = "stop"
	ActionToggleHotkeys ActionKind = "toggle-hotkeys"
	ActionIntegration   ActionKind = "integration"
)

// ParseActionKind validates an action kind string
func ParseActionKind(s string) (ActionKind, error) {
	switch ActionKind(s) {
	case ActionNone, ActionStart, ActionStop, ActionToggleHotkeys, ActionIntegration:
		return ActionKind(s), nil
	case "":
		return ActionNone, nil
	default:
		return "", fmt.Errorf("unknown action kind %q", s)
	}
}

// AppAction is one resolved session-boundary action. Integration names the
// integration action to invoke when Kind is ActionIntegration.
type AppAction struct {
	Kind        ActionKind
	Integration string
}

// TerminationPolicy controls how a managed application's process is stopped
type TerminationPolicy string

const (
	// PolicyAuto tries a cooperative shutdown first and force-kills on timeout
	PolicyAuto TerminationPolicy = "auto"
	// PolicyGraceful only ever asks nicely; a timeout is surfaced as a warning
	PolicyGraceful TerminationPolicy = "graceful"
	// PolicyForce skips the cooperative signal entirely
	PolicyForce TerminationPolicy = "force"
)

// ParseTerminationPolicy validates a termination policy string
func ParseTerminationPolicy(s string) (TerminationPolicy, error) {
	switch TerminationPolicy(s) {
	case PolicyAuto, PolicyGraceful, PolicyForce:
		return TerminationPolicy(s), nil
	case "":
		return PolicyAuto, nil
	default:
		return "", fmt.Errorf("unknown termination policy %q", s)
	}
}

// TerminationSpec is the per-application termination configuration.
// GracefulTimeout is mandatory for Auto and Graceful policies; there is no
// implicit global default.
type TerminationSpec struct {
	Policy          TerminationPolicy
	GracefulTimeout time.Duration
}

// IntegrationKind selects the control-channel protocol for an application
type IntegrationKind string

const (
	// IntegrationWebSocket is an OBS-style JSON websocket with challenge auth
	IntegrationWebSocket IntegrationKind = "websocket"
	// IntegrationMixer is a vendor remote-control library loaded in-process
	IntegrationMixer IntegrationKind = "mixer"
)

// IntegrationSettings configures a managed application's control channel.
// Actions maps action names ("enter-game-mode", "exit-game-mode", ...) to
// ordered parameter assignments.
type IntegrationSettings struct {
	Kind        IntegrationKind
	Host        string
	Port        int
	Password    string
	LibraryPath string
	Actions     map[string][]Assignment

	// CloseBeforeKill sequences channel close before process termination
	// for applications whose control library misbehaves otherwise
	CloseBeforeKill bool
}

// ManagedApplication is a third-party program whose lifecycle and runtime
// state gamerig controls around a game session.
type ManagedApplication struct {
	ID             string
	ExecutablePath string
	Args           []string
	ProcessPattern ProcessPattern
	OnSessionStart AppAction
	OnSessionEnd   AppAction
	Termination    TerminationSpec
	Integration    *IntegrationSettings
}

// HasIntegration reports whether the application exposes a control channel
func (a *ManagedApplication) HasIntegration() bool {
	return a.Integration != nil
}
