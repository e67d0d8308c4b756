// Package identity provides host identity information for the demo.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultVersion is the fallback version string when metadata.json is not found.
const DefaultVersion = "0.1.0-dev"

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "statedemo"
	}
	return h
}

// GetVersion reads the version from metadata.json in the config
// directory. Falls back to DefaultVersion if the file is missing or
// unreadable.
func GetVersion(dir string) string {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultVersion
		}
		dir = filepath.Join(home, ".config", "statedemo")
	}

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return DefaultVersion
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return DefaultVersion
	}

	if v, ok := meta["version"].(string); ok && v != "" {
		return v
	}
	return DefaultVersion
}
