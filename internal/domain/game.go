package domain

// GameDefinition describes one tracked game and the managed applications
// orchestrated around it. Loaded once per session invocation and immutable
// for the session's duration.
type GameDefinition struct {
	ID             string
	DisplayName    string
	ProcessPattern ProcessPattern
	ManagedApps    []string
}

// IsManual reports whether the game has no detectable process (console or
// capture-card sessions ended by explicit confirmation)
func (g *GameDefinition) IsManual() bool {
	return g.ProcessPattern.IsEmpty()
}
