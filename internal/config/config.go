package config

import (
	"os"
	"path/filepath"
)

// configDirOverride is set by tests to redirect ConfigDir.
var configDirOverride string

// dataDirOverride is set by tests to redirect DataDir.
var dataDirOverride string

// ConfigDir returns the config directory for promptpad.
func ConfigDir() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "promptpad")
}

// DataDir returns ~/.local/share/promptpad, creating it if needed.
func DataDir() (string, error) {
	dir := dataDirOverride
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share", "promptpad")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// HistoryPath returns the path of the submission history database.
func HistoryPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
