package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"gamerig/internal/ports"
)

// StdinManualControl ends manual sessions from terminal input. Games
// without a process pattern cannot be observed, so the operator decides
// when the session is over.
type StdinManualControl struct {
	in  io.Reader
	out io.Writer
}

func NewStdinManualControl(in io.Reader, out io.Writer) *StdinManualControl {
	return &StdinManualControl{in: in, out: out}
}

// WaitForEnd blocks until the operator confirms the session is over or
// ctx is cancelled.
func (m *StdinManualControl) WaitForEnd(ctx context.Context, gameName string) error {
	confirmed := make(chan struct{})
	go func() {
		reader := bufio.NewReader(m.in)
		for {
			fmt.Fprintf(m.out, "Session for %s is active. End it now? [y/N] ", gameName)
			line, err := reader.ReadString('\n')
			if err != nil {
				close(confirmed)
				return
			}
			answer := strings.ToLower(strings.TrimSpace(line))
			if answer == "y" || answer == "yes" {
				close(confirmed)
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-confirmed:
		return nil
	}
}

var _ ports.ManualControl = (*StdinManualControl)(nil)
