package domain

import "errors"

// Error taxonomy for session execution. ErrUnknownApp is a configuration
// error and fatal before the session starts; ErrRollbackFailed is fatal to
// the session's completion status. Everything else is recorded per step and
// never aborts the session on its own.
var (
	ErrUnknownApp       = errors.New("managed application not configured")
	ErrLaunchFailed     = errors.New("failed to launch process")
	ErrAuthFailed       = errors.New("integration authentication failed")
	ErrProtocol         = errors.New("integration protocol error")
	ErrRemote           = errors.New("integration remote error")
	ErrTimeout          = errors.New("operation timed out")
	ErrInvalidParameter = errors.New("invalid integration parameter")
	ErrRollbackFailed   = errors.New("session rollback failed")
	ErrNotConnected     = errors.New("integration channel not connected")
	ErrUnsupported      = errors.New("not supported on this platform")
)
