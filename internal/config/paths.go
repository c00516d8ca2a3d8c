package config

import (
	"os"
	"path/filepath"
)

const (
	appName        = "datalake-api"
	configFileName = "config.toml"
)

// SystemConfigPath is where packaged deployments install the config file.
const SystemConfigPath = "/etc/" + appName + "/" + configFileName

// UserConfigPath returns the per-user config file path under
// os.UserConfigDir ($XDG_CONFIG_HOME on Linux, ~/Library/Application Support
// on macOS), or "" when no home directory is known.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, appName, configFileName)
}

// DefaultConfigPath is the config file used when neither DATALAKE_CONFIG nor
// --config is given: the user file if it exists, else the system file if it
// exists, else the user path (so LoadOrDefault falls back to defaults).
func DefaultConfigPath() string {
	return firstExisting(UserConfigPath(), SystemConfigPath)
}

func firstExisting(candidates ...string) string {
	for _, p := range candidates {
		if p == "" {
			continue
		}

		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	for _, p := range candidates {
		if p != "" {
			return p
		}
	}

	return ""
}
