package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"gamerig/internal/adapters/storage"
	"gamerig/internal/config"
)

// HistoryCmd shows past session results
type HistoryCmd struct {
	Limit int `help:"Maximum number of sessions to show" default:"20"`
}

func (h *HistoryCmd) Run(cli *CLI) error {
	history, err := storage.NewSQLiteRepository(config.DBPath())
	if err != nil {
		return err
	}
	defer history.Close()

	results, err := history.List(context.Background(), h.Limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No sessions recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tGAME\tPHASE\tRESULT\tSTEPS")
	for _, result := range results {
		outcome := "ok"
		if !result.OverallSuccess {
			outcome = fmt.Sprintf("%d error(s)", len(result.Errors()))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			result.StartedAt.Local().Format("2006-01-02 15:04"),
			result.GameName,
			result.Phase,
			outcome,
			len(result.Steps))
	}
	return w.Flush()
}
