package ports

import "context"

// ManualControl ends sessions for games with no detectable process. The
// orchestrator treats WaitForEnd returning exactly like a game-process
// exit; cancellation of ctx must unblock it promptly.
type ManualControl interface {
	WaitForEnd(ctx context.Context, gameName string) error
}
