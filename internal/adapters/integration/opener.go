package integration

import (
	"fmt"

	"gamerig/internal/adapters/mixer"
	"gamerig/internal/adapters/obsws"
	"gamerig/internal/domain"
	"gamerig/internal/ports"
)

// Opener builds the right integration channel for a managed application.
// Channels come back unconnected; the orchestrator owns their lifetime.
type Opener struct {
	procs ports.ProcessController
}

// Compile-time interface verification
var _ ports.IntegrationOpener = (*Opener)(nil)

// NewOpener creates a new channel opener
func NewOpener(procs ports.ProcessController) *Opener {
	return &Opener{procs: procs}
}

// Open returns a fresh, unshared channel for the application
func (o *Opener) Open(app domain.ManagedApplication) (ports.IntegrationChannel, error) {
	if app.Integration == nil {
		return nil, fmt.Errorf("%s has no integration configured: %w", app.ID, domain.ErrUnknownApp)
	}

	switch app.Integration.Kind {
	case domain.IntegrationWebSocket:
		return obsws.NewClient(*app.Integration), nil
	case domain.IntegrationMixer:
		return mixer.NewClient(app, o.procs), nil
	default:
		return nil, fmt.Errorf("%s: unknown integration kind %q", app.ID, app.Integration.Kind)
	}
}
