package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gamerig/internal/domain"
)

// Document is the validated configuration handed to the orchestration
// core: the managed-application set plus the game definitions referencing
// it. Schema validation happens here, on load; the core only guards
// against missing runtime resources.
type Document struct {
	Apps           []AppConfig  `json:"apps"`
	Games          []GameConfig `json:"games"`
	PollIntervalMs int          `json:"pollIntervalMs,omitempty"`
}

// AppConfig is one managed application entry
type AppConfig struct {
	ID             string             `json:"id"`
	ExecutablePath string             `json:"executablePath,omitempty"`
	Args           []string           `json:"args,omitempty"`
	ProcessPattern string             `json:"processPattern"`
	OnSessionStart ActionConfig       `json:"onSessionStart"`
	OnSessionEnd   ActionConfig       `json:"onSessionEnd"`
	Termination    TerminationConfig  `json:"termination"`
	Integration    *IntegrationConfig `json:"integration,omitempty"`
}

// ActionConfig selects a session-boundary action
type ActionConfig struct {
	Kind              string `json:"kind"`
	IntegrationAction string `json:"integrationAction,omitempty"`
}

// TerminationConfig selects the stop policy. GracefulTimeoutMs is
// mandatory for auto and graceful policies; there is no implicit default.
type TerminationConfig struct {
	Policy            string `json:"policy,omitempty"`
	GracefulTimeoutMs int    `json:"gracefulTimeoutMs,omitempty"`
}

// IntegrationConfig configures an application's control channel. Password
// accepts an env reference ("env:OBS_WS_PASSWORD") so credentials stay out
// of the file.
type IntegrationConfig struct {
	Kind            string                        `json:"kind"`
	Host            string                        `json:"host,omitempty"`
	Port            int                           `json:"port,omitempty"`
	Password        string                        `json:"password,omitempty"`
	LibraryPath     string                        `json:"libraryPath,omitempty"`
	CloseBeforeKill bool                          `json:"closeBeforeKill,omitempty"`
	Actions         map[string][]AssignmentConfig `json:"actions,omitempty"`
}

// AssignmentConfig sets one parameter; Value may be a JSON number, bool,
// or string
type AssignmentConfig struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// GameConfig is one tracked game entry. An empty processPattern marks a
// manual session (console or capture-card games).
type GameConfig struct {
	ID             string   `json:"id"`
	DisplayName    string   `json:"displayName,omitempty"`
	ProcessPattern string   `json:"processPattern,omitempty"`
	ManagedApps    []string `json:"managedApps"`
}

// Load reads and validates the configuration file
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the schema rules the orchestration core assumes hold
func (d *Document) Validate() error {
	appIDs := make(map[string]bool)
	for _, app := range d.Apps {
		if app.ID == "" {
			return fmt.Errorf("app with empty id")
		}
		if appIDs[app.ID] {
			return fmt.Errorf("duplicate app id %q", app.ID)
		}
		appIDs[app.ID] = true

		if err := validateApp(app); err != nil {
			return fmt.Errorf("app %q: %w", app.ID, err)
		}
	}

	gameIDs := make(map[string]bool)
	for _, game := range d.Games {
		if game.ID == "" {
			return fmt.Errorf("game with empty id")
		}
		if gameIDs[game.ID] {
			return fmt.Errorf("duplicate game id %q", game.ID)
		}
		gameIDs[game.ID] = true

		for _, ref := range game.ManagedApps {
			if !appIDs[ref] {
				return fmt.Errorf("game %q references unknown app %q", game.ID, ref)
			}
		}
	}

	return nil
}

func validateApp(app AppConfig) error {
	for _, field := range []struct {
		name   string
		action ActionConfig
	}{
		{"onSessionStart", app.OnSessionStart},
		{"onSessionEnd", app.OnSessionEnd},
	} {
		kind, err := domain.ParseActionKind(field.action.Kind)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}

		switch kind {
		case domain.ActionStart:
			if app.ExecutablePath == "" {
				return fmt.Errorf("%s is %q but no executablePath is set", field.name, kind)
			}
		case domain.ActionIntegration:
			if app.Integration == nil {
				return fmt.Errorf("%s is %q but no integration is configured", field.name, kind)
			}
			if _, ok := app.Integration.Actions[field.action.IntegrationAction]; !ok {
				return fmt.Errorf("%s references undefined integration action %q",
					field.name, field.action.IntegrationAction)
			}
		}
	}

	policy, err := domain.ParseTerminationPolicy(app.Termination.Policy)
	if err != nil {
		return err
	}
	if policy != domain.PolicyForce && app.Termination.GracefulTimeoutMs <= 0 {
		return fmt.Errorf("termination policy %q requires gracefulTimeoutMs", policy)
	}

	if app.Integration != nil {
		switch domain.IntegrationKind(app.Integration.Kind) {
		case domain.IntegrationWebSocket:
			if app.Integration.Host == "" || app.Integration.Port == 0 {
				return fmt.Errorf("websocket integration requires host and port")
			}
		case domain.IntegrationMixer:
			if app.Integration.LibraryPath == "" {
				return fmt.Errorf("mixer integration requires libraryPath")
			}
		default:
			return fmt.Errorf("unknown integration kind %q", app.Integration.Kind)
		}

		for name, assignments := range app.Integration.Actions {
			for _, a := range assignments {
				if a.Name == "" {
					return fmt.Errorf("integration action %q has an assignment without a name", name)
				}
				if _, err := parseValue(a.Value); err != nil {
					return fmt.Errorf("integration action %q, parameter %q: %w", name, a.Name, err)
				}
			}
		}
	}

	return nil
}

// ResolveApps converts the app entries into domain objects keyed by id
func (d *Document) ResolveApps() map[string]domain.ManagedApplication {
	apps := make(map[string]domain.ManagedApplication, len(d.Apps))
	for _, app := range d.Apps {
		apps[app.ID] = resolveApp(app)
	}
	return apps
}

// Game resolves one game definition by id
func (d *Document) Game(id string) (domain.GameDefinition, error) {
	for _, game := range d.Games {
		if game.ID == id {
			displayName := game.DisplayName
			if displayName == "" {
				displayName = game.ID
			}
			return domain.GameDefinition{
				ID:             game.ID,
				DisplayName:    displayName,
				ProcessPattern: domain.ProcessPattern(game.ProcessPattern),
				ManagedApps:    game.ManagedApps,
			}, nil
		}
	}
	return domain.GameDefinition{}, fmt.Errorf("game %q not found in configuration", id)
}

// PollInterval returns the configured polling cadence, or zero for the
// built-in default
func (d *Document) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMs) * time.Millisecond
}

func resolveApp(app AppConfig) domain.ManagedApplication {
	policy, _ := domain.ParseTerminationPolicy(app.Termination.Policy)
	startKind, _ := domain.ParseActionKind(app.OnSessionStart.Kind)
	endKind, _ := domain.ParseActionKind(app.OnSessionEnd.Kind)

	resolved := domain.ManagedApplication{
		ID:             app.ID,
		ExecutablePath: ExpandPath(app.ExecutablePath),
		Args:           app.Args,
		ProcessPattern: domain.ProcessPattern(app.ProcessPattern),
		OnSessionStart: domain.AppAction{Kind: startKind, Integration: app.OnSessionStart.IntegrationAction},
		OnSessionEnd:   domain.AppAction{Kind: endKind, Integration: app.OnSessionEnd.IntegrationAction},
		Termination: domain.TerminationSpec{
			Policy:          policy,
			GracefulTimeout: time.Duration(app.Termination.GracefulTimeoutMs) * time.Millisecond,
		},
	}

	if app.Integration != nil {
		settings := &domain.IntegrationSettings{
			Kind:            domain.IntegrationKind(app.Integration.Kind),
			Host:            app.Integration.Host,
			Port:            app.Integration.Port,
			Password:        resolvePassword(app.Integration.Password),
			LibraryPath:     ExpandPath(app.Integration.LibraryPath),
			CloseBeforeKill: app.Integration.CloseBeforeKill,
			Actions:         make(map[string][]domain.Assignment, len(app.Integration.Actions)),
		}
		for name, assignments := range app.Integration.Actions {
			resolvedAssignments := make([]domain.Assignment, 0, len(assignments))
			for _, a := range assignments {
				value, _ := parseValue(a.Value)
				resolvedAssignments = append(resolvedAssignments, domain.Assignment{Name: a.Name, Value: value})
			}
			settings.Actions[name] = resolvedAssignments
		}
		resolved.Integration = settings
	}

	return resolved
}

// resolvePassword resolves "env:NAME" credential references
func resolvePassword(password string) string {
	if name, ok := strings.CutPrefix(password, "env:"); ok {
		return os.Getenv(name)
	}
	return password
}

// parseValue maps a JSON scalar onto a parameter value
func parseValue(raw json.RawMessage) (domain.ParamValue, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return domain.BoolValue(b), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return domain.FloatValue(f), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.StringValue(s), nil
	}
	return domain.ParamValue{}, fmt.Errorf("value must be a number, bool, or string")
}
