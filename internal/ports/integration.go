package ports

import (
	"context"

	"gamerig/internal/domain"
)

// IntegrationChannel is a bidirectional control channel to one external
// application. A channel owns exactly one transport connection, is never
// shared between two managed applications, and Close must be safe to call
// repeatedly and before Connect ever completed.
//
// Parameter names follow a hierarchical scheme chosen by the binding
// ("Scene.Current", "Strip[0].Gain", ...). Unknown names or out-of-range
// indices surface as domain.ErrInvalidParameter and are non-fatal to the
// session.
type IntegrationChannel interface {
	// Connect opens and authenticates the channel. Connection-refused is
	// retried a bounded number of times with backoff because the controlled
	// application may still be starting. Auth failure wraps
	// domain.ErrAuthFailed and is fatal for this integration only.
	Connect(ctx context.Context) error

	// GetParameter reads one named parameter's current value
	GetParameter(ctx context.Context, name string) (domain.ParamValue, error)

	// SetParameter writes one named parameter
	SetParameter(ctx context.Context, name string, value domain.ParamValue) error

	// ApplyProfile applies assignments as a best-effort batch: when one
	// fails the remainder are still attempted and every failure is returned
	ApplyProfile(ctx context.Context, assignments []domain.Assignment) []domain.AssignmentError

	// Close releases the transport; idempotent
	Close() error
}

// IntegrationOpener builds an unconnected channel for a managed
// application's integration settings
type IntegrationOpener interface {
	Open(app domain.ManagedApplication) (IntegrationChannel, error)
}
