package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}
	return path
}

// DefaultPath returns the configuration file location, honoring
// GAMERIG_CONFIG
func DefaultPath() string {
	if env := os.Getenv("GAMERIG_CONFIG"); env != "" {
		return ExpandPath(env)
	}
	return ExpandPath("~/.gamerig/config.json")
}

// DBPath returns the session-history database location
func DBPath() string {
	if env := os.Getenv("GAMERIG_DB"); env != "" {
		return ExpandPath(env)
	}
	return ExpandPath("~/.gamerig/history.db")
}
