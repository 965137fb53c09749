package domain

import "strings"

// ProcessPattern matches OS process names. A pattern is one or more
// alternatives separated by "|"; an alternative ending in "*" matches any
// name with that prefix, otherwise the match is a case-insensitive exact
// comparison. A candidate's ".exe" suffix is ignored so the same pattern
// works across platforms.
type ProcessPattern string

// IsEmpty reports whether no pattern is configured (manual sessions)
func (p ProcessPattern) IsEmpty() bool {
	return strings.TrimSpace(string(p)) == ""
}

// Alternatives returns the individual pattern alternatives
func (p ProcessPattern) Alternatives() []string {
	if p.IsEmpty() {
		return nil
	}

	parts := strings.Split(string(p), "|")
	alts := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			alts = append(alts, trimmed)
		}
	}
	return alts
}

// Matches reports whether a process name matches any alternative
func (p ProcessPattern) Matches(processName string) bool {
	name := strings.TrimSpace(processName)
	if name == "" {
		return false
	}
	trimmed := strings.TrimSuffix(strings.ToLower(name), ".exe")

	for _, alt := range p.Alternatives() {
		alt = strings.ToLower(alt)
		if wildcard, ok := strings.CutSuffix(alt, "*"); ok {
			if strings.HasPrefix(trimmed, wildcard) || strings.HasPrefix(strings.ToLower(name), wildcard) {
				return true
			}
			continue
		}
		if trimmed == strings.TrimSuffix(alt, ".exe") {
			return true
		}
	}
	return false
}
