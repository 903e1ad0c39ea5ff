// ABOUTME: XDG-based data and config directory resolution for the sapling CLI.
// ABOUTME: Checks XDG_DATA_HOME / XDG_CONFIG_HOME, falls back to ~/.local/share/sapling and ~/.config/sapling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "sapling"

// defaultDataDir returns the directory holding the run archive and TUI log.
func defaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// defaultConfigDir returns the directory searched for config.yaml and .env.
func defaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func xdgDir(env string, fallback ...string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// resolveDataDir returns override when set, else the XDG default, and makes
// sure the directory exists.
func resolveDataDir(override string) (string, error) {
	dir := override
	if dir == "" {
		var err error
		if dir, err = defaultDataDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// defaultConfigPath returns config.yaml in the config directory when it exists.
func defaultConfigPath() string {
	dir, err := defaultConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
