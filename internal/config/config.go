// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultBucket is the GCS bucket holding Document AI inference output.
const DefaultBucket = "invoice_inference_json_output"

// DefaultDatabasePath returns the default SQLite database location.
func DefaultDatabasePath() string {
	return ExpandPath("~/.local/share/chargemap/chargemap.db")
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
