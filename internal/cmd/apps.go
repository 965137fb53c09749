package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"gamerig/internal/config"
)

// AppsCmd lists the managed applications
type AppsCmd struct{}

func (a *AppsCmd) Run(cli *CLI) error {
	doc, err := config.Load(cli.ConfigPath())
	if err != nil {
		return err
	}

	if len(doc.Apps) == 0 {
		fmt.Println("No applications configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tON START\tON END\tTERMINATION\tINTEGRATION")
	for _, app := range doc.Apps {
		integration := "-"
		if app.Integration != nil {
			integration = app.Integration.Kind
		}
		policy := app.Termination.Policy
		if policy == "" {
			policy = "auto"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			app.ID,
			describeAction(app.OnSessionStart),
			describeAction(app.OnSessionEnd),
			policy,
			integration)
	}
	return w.Flush()
}

func describeAction(action config.ActionConfig) string {
	if action.Kind == "" || action.Kind == "none" {
		return "-"
	}
	if action.IntegrationAction != "" {
		return fmt.Sprintf("%s (%s)", action.Kind, action.IntegrationAction)
	}
	return action.Kind
}
