package cmd

import (
	"github.com/alecthomas/kong"

	"gamerig/internal/config"
	"gamerig/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"100"`
	Config      string           `help:"Path to the configuration file" type:"path"`

	Run     RunCmd     `cmd:"" help:"Run a gaming session end to end"`
	Games   GamesCmd   `cmd:"" help:"List configured games"`
	Apps    AppsCmd    `cmd:"" help:"List managed applications"`
	History HistoryCmd `cmd:"" help:"Show past session results"`
}

// AfterApply initializes logging after CLI parsing
func (c *CLI) AfterApply() error {
	return logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
}

// ConfigPath returns the configuration file to use
func (c *CLI) ConfigPath() string {
	if c.Config != "" {
		return c.Config
	}
	return config.DefaultPath()
}
