package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName      = "pkgtool"
	configFile   = "config.toml"
	historyFile  = "history.db"
	snapshotFile = "snapshots.db"
)

// ConfigDir returns the directory holding config.toml, honoring
// XDG_CONFIG_HOME on unix-like hosts.
func ConfigDir() string {
	return appDir("XDG_CONFIG_HOME", ".config", "APPDATA")
}

// DataDir returns the directory holding the bbolt stores, honoring
// XDG_DATA_HOME on unix-like hosts.
func DataDir() string {
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"), "LOCALAPPDATA")
}

func appDir(xdgVar, unixFallback, windowsVar string) string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		return filepath.Join(os.Getenv(windowsVar), appName)
	default:
		if xdg := os.Getenv(xdgVar); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, unixFallback, appName)
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configFile)
}

// HistoryPath returns the full path to the history database.
func HistoryPath() string {
	return filepath.Join(DataDir(), historyFile)
}

// SnapshotPath returns the full path to the snapshot database.
func SnapshotPath() string {
	return filepath.Join(DataDir(), snapshotFile)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0755)
}
