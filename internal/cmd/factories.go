package cmd

import (
	"fmt"

	"gamerig/internal/adapters/integration"
	"gamerig/internal/adapters/process"
	"gamerig/internal/adapters/storage"
	"gamerig/internal/config"
	"gamerig/internal/ports"
	"gamerig/internal/services"
)

// Container holds all the dependencies for the application
type Container struct {
	Document   *config.Document
	Procs      ports.ProcessController
	Opener     ports.IntegrationOpener
	History    ports.SessionHistory
	Terminator *services.GracefulTerminator
	Lifecycle  *services.AppLifecycleManager
	Monitor    *services.GameProcessMonitor
}

// NewContainer creates a container with all dependencies wired
func NewContainer(configPath string) (*Container, error) {
	doc, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	history, err := storage.NewSQLiteRepository(config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open session history: %w", err)
	}

	procs := process.NewController()
	interval := doc.PollInterval()
	terminator := services.NewGracefulTerminator(procs, interval)

	return &Container{
		Document:   doc,
		Procs:      procs,
		Opener:     integration.NewOpener(procs),
		History:    history,
		Terminator: terminator,
		Lifecycle:  services.NewAppLifecycleManager(doc.ResolveApps(), procs, terminator),
		Monitor:    services.NewGameProcessMonitor(procs, interval),
	}, nil
}

// Close releases resources held by the container
func (c *Container) Close() error {
	if c.History != nil {
		return c.History.Close()
	}
	return nil
}
