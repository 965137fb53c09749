package mixer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

const (
	loginMaxTries = 10
	loginInterval = 250 * time.Millisecond
)

// Client implements the integration-channel contract over a vendor
// remote-control library loaded in-process. The library usually requires
// the mixer application to be up, so Connect launches it when absent and
// retries login with a short backoff.
type Client struct {
	app   domain.ManagedApplication
	procs ports.ProcessController

	// loadLib is swapped in tests
	loadLib func(path string) (remoteLibrary, error)

	mu        sync.Mutex
	lib       remoteLibrary
	connected bool
}

// Compile-time interface verification
var _ ports.IntegrationChannel = (*Client)(nil)

// NewClient creates an unconnected mixer client for one managed application
func NewClient(app domain.ManagedApplication, procs ports.ProcessController) *Client {
	return &Client{
		app:     app,
		procs:   procs,
		loadLib: loadLibrary,
	}
}

// Connect loads the vendor library, makes sure the mixer application is
// running, and logs in
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	if c.lib == nil {
		lib, err := c.loadLib(c.app.Integration.LibraryPath)
		if err != nil {
			return fmt.Errorf("%s: %w", c.app.ID, err)
		}
		c.lib = lib
	}

	if err := c.ensureAppRunning(); err != nil {
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = loginInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.lib.Login()
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(loginMaxTries))
	if err != nil {
		return fmt.Errorf("%s login: %v: %w", c.app.ID, err, domain.ErrAuthFailed)
	}

	c.connected = true
	logging.Logger.Debug("Mixer remote connected", "app", c.app.ID)
	return nil
}

// ensureAppRunning launches the mixer executable when no matching process
// exists; the login retry loop covers its startup time
func (c *Client) ensureAppRunning() error {
	running, err := c.procs.FindRunning(c.app.ProcessPattern)
	if err != nil {
		return fmt.Errorf("%s: %w", c.app.ID, err)
	}
	if len(running) > 0 || c.app.ExecutablePath == "" {
		return nil
	}

	if _, err := c.procs.Launch(c.app.ExecutablePath, c.app.Args); err != nil {
		return fmt.Errorf("%s: %w", c.app.ID, err)
	}
	return nil
}

// GetParameter reads a parameter, trying the float form first and falling
// back to the string form
func (c *Client) GetParameter(ctx context.Context, name string) (domain.ParamValue, error) {
	lib, err := c.library()
	if err != nil {
		return domain.ParamValue{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ParamValue{}, err
	}
	if !validParamName(name) {
		return domain.ParamValue{}, fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}

	if f, ferr := lib.GetParameterFloat(name); ferr == nil {
		return domain.FloatValue(f), nil
	}
	s, serr := lib.GetParameterString(name)
	if serr == nil {
		return domain.StringValue(s), nil
	}
	return domain.ParamValue{}, fmt.Errorf("get %s: %w", name, serr)
}

// SetParameter writes a parameter. Booleans are written as 0/1 floats, the
// form the vendor API uses for switches like Bus[n].Mute.
func (c *Client) SetParameter(ctx context.Context, name string, value domain.ParamValue) error {
	lib, err := c.library()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validParamName(name) {
		return fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}

	switch value.Kind {
	case domain.ParamFloat:
		return lib.SetParameterFloat(name, value.Float)
	case domain.ParamBool:
		f := 0.0
		if value.Bool {
			f = 1.0
		}
		return lib.SetParameterFloat(name, f)
	case domain.ParamString:
		return lib.SetParameterString(name, value.Str)
	default:
		return fmt.Errorf("%s: unsupported value kind %q: %w", name, value.Kind, domain.ErrInvalidParameter)
	}
}

// ApplyProfile applies assignments best-effort: one failure never stops the
// remainder, and every failure is returned
func (c *Client) ApplyProfile(ctx context.Context, assignments []domain.Assignment) []domain.AssignmentError {
	var failures []domain.AssignmentError
	for _, a := range assignments {
		if err := c.SetParameter(ctx, a.Name, a.Value); err != nil {
			failures = append(failures, domain.AssignmentError{Name: a.Name, Err: err})
		}
	}
	return failures
}

// Close logs out of the vendor library; idempotent
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false

	if err := c.lib.Logout(); err != nil {
		logging.Logger.Warn("Mixer logout failed", "app", c.app.ID, "error", err)
		return err
	}
	return nil
}

func (c *Client) library() (remoteLibrary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.lib == nil {
		return nil, fmt.Errorf("%s: %w", c.app.ID, domain.ErrNotConnected)
	}
	return c.lib, nil
}
