package config

import (
	"os"
	"path/filepath"
)

// ConfigEnvVar overrides the config file location.
const ConfigEnvVar = "TERMCALC_CONFIG"

// GetConfigPath returns the configuration file path. It first checks the
// TERMCALC_CONFIG environment variable, then falls back to ~/.termcalc/config.
func GetConfigPath() (string, error) {
	if configPath := os.Getenv(ConfigEnvVar); configPath != "" {
		return configPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".termcalc", "config"), nil
}
