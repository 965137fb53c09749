package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"gamerig/internal/domain"
	"gamerig/internal/ports"
)

// MockProcessController is a testify mock over ports.ProcessController
type MockProcessController struct {
	mock.Mock
}

func (m *MockProcessController) FindRunning(pattern domain.ProcessPattern) ([]ports.ProcessHandle, error) {
	args := m.Called(pattern)
	handles, _ := args.Get(0).([]ports.ProcessHandle)
	return handles, args.Error(1)
}

func (m *MockProcessController) Launch(path string, cmdArgs []string) (ports.ProcessHandle, error) {
	args := m.Called(path, cmdArgs)
	handle, _ := args.Get(0).(ports.ProcessHandle)
	return handle, args.Error(1)
}

func (m *MockProcessController) SignalGraceful(handle ports.ProcessHandle) bool {
	return m.Called(handle).Bool(0)
}

func (m *MockProcessController) Kill(handle ports.ProcessHandle) bool {
	return m.Called(handle).Bool(0)
}

func (m *MockProcessController) IsRunning(handle ports.ProcessHandle) bool {
	return m.Called(handle).Bool(0)
}

var _ ports.ProcessController = (*MockProcessController)(nil)

// fakeChannel is an in-memory integration channel holding a parameter map.
// It records every write so tests can assert ordering and restore behavior.
type fakeChannel struct {
	mu     sync.Mutex
	params map[string]domain.ParamValue

	connectErr error
	getErr     map[string]error
	setErr     map[string]error
	closeHook  func()

	connects int
	closes   int
	sets     []domain.Assignment
}

func newFakeChannel(params map[string]domain.ParamValue) *fakeChannel {
	copied := make(map[string]domain.ParamValue, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &fakeChannel{params: copied}
}

func (c *fakeChannel) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	return c.connectErr
}

func (c *fakeChannel) GetParameter(ctx context.Context, name string) (domain.ParamValue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.getErr[name]; err != nil {
		return domain.ParamValue{}, err
	}
	value, ok := c.params[name]
	if !ok {
		return domain.ParamValue{}, domain.ErrInvalidParameter
	}
	return value, nil
}

func (c *fakeChannel) SetParameter(ctx context.Context, name string, value domain.ParamValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.setErr[name]; err != nil {
		return err
	}
	c.params[name] = value
	c.sets = append(c.sets, domain.Assignment{Name: name, Value: value})
	return nil
}

func (c *fakeChannel) ApplyProfile(ctx context.Context, assignments []domain.Assignment) []domain.AssignmentError {
	var failures []domain.AssignmentError
	for _, a := range assignments {
		if err := c.SetParameter(ctx, a.Name, a.Value); err != nil {
			failures = append(failures, domain.AssignmentError{Name: a.Name, Err: err})
		}
	}
	return failures
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	hook := c.closeHook
	c.closes++
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (c *fakeChannel) value(name string) domain.ParamValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params[name]
}

func (c *fakeChannel) setsFor(name string) []domain.ParamValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	var values []domain.ParamValue
	for _, a := range c.sets {
		if a.Name == name {
			values = append(values, a.Value)
		}
	}
	return values
}

var _ ports.IntegrationChannel = (*fakeChannel)(nil)

// fakeOpener hands out pre-built channels per application id
type fakeOpener struct {
	channels map[string]*fakeChannel
	openErr  map[string]error
}

func (o *fakeOpener) Open(app domain.ManagedApplication) (ports.IntegrationChannel, error) {
	if err := o.openErr[app.ID]; err != nil {
		return nil, err
	}
	ch, ok := o.channels[app.ID]
	if !ok {
		return nil, domain.ErrUnknownApp
	}
	return ch, nil
}

var _ ports.IntegrationOpener = (*fakeOpener)(nil)

// fakeManual ends manual sessions through a channel the test controls
type fakeManual struct {
	done chan struct{}
}

func (m *fakeManual) WaitForEnd(ctx context.Context, gameName string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return nil
	}
}

var _ ports.ManualControl = (*fakeManual)(nil)
