package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// StateFileName is the name of the snapshot file inside the data directory.
const StateFileName = "state.json"

// AppIdentity names the application for the purpose of locating its
// per-user data directory.
type AppIdentity struct {
	Qualifier    string // e.g. "com"
	Organization string
	Application  string
}

// DefaultIdentity is the identity termcalc stores its state under.
var DefaultIdentity = AppIdentity{
	Qualifier:    "com",
	Organization: "calculator",
	Application:  "comprehensive-calculator",
}

// ResolveStatePath returns the absolute path of the state file for id,
// following the platform's convention for per-user application data.
func ResolveStatePath(id AppIdentity) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return resolveStatePath(id, runtime.GOOS, os.Getenv, home)
}

func resolveStatePath(id AppIdentity, goos string, getenv func(string) string, home string) (string, error) {
	if id.Application == "" {
		return "", fmt.Errorf("application name cannot be empty")
	}

	var dir string
	switch goos {
	case "windows":
		appData := getenv("AppData")
		if appData == "" {
			if home == "" {
				return "", fmt.Errorf("neither %%AppData%% nor a home directory is available")
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		dir = filepath.Join(appData, id.Organization, id.Application, "data")

	case "darwin", "ios":
		if home == "" {
			return "", fmt.Errorf("home directory is not available")
		}
		bundle := strings.ReplaceAll(strings.Join(nonEmpty(id.Qualifier, id.Organization, id.Application), "."), " ", "-")
		dir = filepath.Join(home, "Library", "Application Support", bundle)

	default:
		dataHome := getenv("XDG_DATA_HOME")
		if dataHome == "" || !filepath.IsAbs(dataHome) {
			if home == "" {
				return "", fmt.Errorf("neither $XDG_DATA_HOME nor a home directory is available")
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		dir = filepath.Join(dataHome, strings.ToLower(strings.ReplaceAll(id.Application, " ", "")))
	}

	return filepath.Join(dir, StateFileName), nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
