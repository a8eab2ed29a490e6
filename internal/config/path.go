// Package config loads application settings from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the per-user config and data directories.
const AppName = "triage"

// ExpandPath resolves environment variables and a leading ~ in path.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// ConfigDir is $XDG_CONFIG_HOME/triage, falling back to ~/.config/triage.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	return ExpandPath(filepath.Join("~", ".config", AppName))
}
