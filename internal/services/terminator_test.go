package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gamerig/internal/domain"
	"gamerig/internal/ports"
)

const testPollInterval = 5 * time.Millisecond

func testApp(policy domain.TerminationPolicy, timeout time.Duration) domain.ManagedApplication {
	return domain.ManagedApplication{
		ID:             "nowinkey",
		ProcessPattern: "nowinkey",
		Termination:    domain.TerminationSpec{Policy: policy, GracefulTimeout: timeout},
	}
}

func TestTerminate_NotRunning(t *testing.T) {
	procs := new(MockProcessController)
	procs.On("FindRunning", domain.ProcessPattern("nowinkey")).Return([]ports.ProcessHandle{}, nil)

	terminator := NewGracefulTerminator(procs, testPollInterval)
	result := terminator.Terminate(context.Background(), testApp(domain.PolicyAuto, time.Second))

	assert.Equal(t, OutcomeNotRunning, result.Outcome)
	assert.NoError(t, result.Err)
	procs.AssertNotCalled(t, "Kill")
	procs.AssertNotCalled(t, "SignalGraceful")
}

func TestTerminate_ForcePolicySkipsGracefulSignal(t *testing.T) {
	handle := ports.ProcessHandle{PID: 42, Name: "nowinkey"}
	procs := new(MockProcessController)
	procs.On("FindRunning", domain.ProcessPattern("nowinkey")).Return([]ports.ProcessHandle{handle}, nil)
	procs.On("Kill", handle).Return(true)

	terminator := NewGracefulTerminator(procs, testPollInterval)
	result := terminator.Terminate(context.Background(), testApp(domain.PolicyForce, 0))

	assert.Equal(t, OutcomeForceKilled, result.Outcome)
	assert.NoError(t, result.Err)
	procs.AssertNotCalled(t, "SignalGraceful")
}

func TestTerminate_AutoExitsWithinTimeout(t *testing.T) {
	handle := ports.ProcessHandle{PID: 42, Name: "nowinkey"}
	procs := new(MockProcessController)
	procs.On("FindRunning", domain.ProcessPattern("nowinkey")).Return([]ports.ProcessHandle{handle}, nil)
	procs.On("SignalGraceful", handle).Return(true)
	procs.On("IsRunning", handle).Return(false)

	terminator := NewGracefulTerminator(procs, testPollInterval)
	result := terminator.Terminate(context.Background(), testApp(domain.PolicyAuto, time.Second))

	assert.Equal(t, OutcomeExited, result.Outcome)
	assert.NoError(t, result.Err)
	procs.AssertNotCalled(t, "Kill")
}

func TestTerminate_AutoForceKillsExactlyOnceAfterTimeout(t *testing.T) {
	handle := ports.ProcessHandle{PID: 42, Name: "nowinkey"}
	procs := new(MockProcessController)
	procs.On("FindRunning", domain.ProcessPattern("nowinkey")).Return([]ports.ProcessHandle{handle}, nil)
	procs.On("SignalGraceful", handle).Return(true)
	procs.On("IsRunning", handle).Return(true)
	procs.On("Kill", handle).Return(true)

	terminator := NewGracefulTerminator(procs, testPollInterval)
	result := terminator.Terminate(context.Background(), testApp(domain.PolicyAuto, 20*time.Millisecond))

	assert.Equal(t, OutcomeForceKilled, result.Outcome)
	assert.NoError(t, result.Err)
	procs.AssertNumberOfCalls(t, "Kill", 1)
}

func TestTerminate_GracefulPolicyNeverForceKills(t *testing.T) {
	handle := ports.ProcessHandle{PID: 42, Name: "nowinkey"}
	procs := new(MockProcessController)
	procs.On("FindRunning", domain.ProcessPattern("nowinkey")).Return([]ports.ProcessHandle{handle}, nil)
	procs.On("SignalGraceful", handle).Return(true)
	procs.On("IsRunning", handle).Return(true)

	terminator := NewGracefulTerminator(procs, testPollInterval)
	result := terminator.Terminate(context.Background(), testApp(domain.PolicyGraceful, 20*time.Millisecond))

	assert.Equal(t, OutcomeTimedOut, result.Outcome)
	assert.ErrorIs(t, result.Err, domain.ErrTimeout)
	procs.AssertNotCalled(t, "Kill")
}

func TestTerminate_WaitIsBoundedByTimeoutPlusOnePoll(t *testing.T) {
	handle := ports.ProcessHandle{PID: 42, Name: "nowinkey"}
	procs := new(MockProcessController)
	procs.On("FindRunning", domain.ProcessPattern("nowinkey")).Return([]ports.ProcessHandle{handle}, nil)
	procs.On("SignalGraceful", handle).Return(true)
	procs.On("IsRunning", handle).Return(true)
	procs.On("Kill", handle).Return(true)

	timeout := 30 * time.Millisecond
	terminator := NewGracefulTerminator(procs, testPollInterval)

	start := time.Now()
	terminator.Terminate(context.Background(), testApp(domain.PolicyAuto, timeout))
	elapsed := time.Since(start)

	// Generous upper bound to avoid scheduler flakiness, still far below
	// two timeouts
	assert.Less(t, elapsed, timeout+10*testPollInterval)
}

func TestTerminate_WorstOutcomeWins(t *testing.T) {
	exiting := ports.ProcessHandle{PID: 41, Name: "nowinkey"}
	stuck := ports.ProcessHandle{PID: 42, Name: "nowinkey"}
	procs := new(MockProcessController)
	procs.On("FindRunning", domain.ProcessPattern("nowinkey")).Return([]ports.ProcessHandle{exiting, stuck}, nil)
	procs.On("SignalGraceful", exiting).Return(true)
	procs.On("SignalGraceful", stuck).Return(true)
	procs.On("IsRunning", exiting).Return(false)
	procs.On("IsRunning", stuck).Return(true)
	procs.On("Kill", stuck).Return(true)

	terminator := NewGracefulTerminator(procs, testPollInterval)
	result := terminator.Terminate(context.Background(), testApp(domain.PolicyAuto, 20*time.Millisecond))

	assert.Equal(t, OutcomeForceKilled, result.Outcome)
}
