package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/services"
)

// RunCmd runs a full gaming session for one configured game
type RunCmd struct {
	Game string `arg:"" help:"Id of the game to run a session for"`
}

func (r *RunCmd) Run(cli *CLI) error {
	container, err := NewContainer(cli.ConfigPath())
	if err != nil {
		return err
	}
	defer container.Close()

	game, err := container.Document.Game(r.Game)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := services.NewSessionOrchestrator(
		game,
		container.Lifecycle,
		container.Monitor,
		container.Opener,
		NewStdinManualControl(os.Stdin, os.Stdout),
	)

	fmt.Printf("Starting session for %s\n", game.DisplayName)
	result := orchestrator.Run(ctx)

	if err := container.History.Save(context.Background(), result); err != nil {
		logging.Logger.Warn("failed to persist session result",
			slog.String("session_id", result.SessionID),
			slog.String("error", err.Error()))
	}

	printResult(result)
	if !result.OverallSuccess {
		return fmt.Errorf("session for %q ended in phase %s", game.ID, result.Phase)
	}
	return nil
}

func printResult(result domain.SessionResult) {
	fmt.Printf("\nSession %s (%s)\n", result.SessionID, result.Phase)
	for _, step := range result.Steps {
		marker := "ok"
		if !step.OK() {
			marker = "FAILED"
		}
		fmt.Printf("  [%s] %s\n", marker, step.String())
	}
	if result.OverallSuccess {
		fmt.Println("Session completed, environment restored")
	} else {
		fmt.Println("Session ended with errors, check the steps above")
	}
}
