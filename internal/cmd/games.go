package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gamerig/internal/config"
)

// GamesCmd lists the configured games
type GamesCmd struct{}

func (g *GamesCmd) Run(cli *CLI) error {
	doc, err := config.Load(cli.ConfigPath())
	if err != nil {
		return err
	}

	if len(doc.Games) == 0 {
		fmt.Println("No games configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDETECTION\tAPPS")
	for _, game := range doc.Games {
		detection := game.ProcessPattern
		if detection == "" {
			detection = "(manual)"
		}
		name := game.DisplayName
		if name == "" {
			name = game.ID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", game.ID, name, detection, strings.Join(game.ManagedApps, ", "))
	}
	return w.Flush()
}
