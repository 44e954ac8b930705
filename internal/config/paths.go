package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the Kazadigate data directory.
// - Windows: %APPDATA%\kazadigate
// - Other OS: ~/.kazadigate
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "kazadigate")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".kazadigate"
	}
	return filepath.Join(home, ".kazadigate")
}

// DBPath returns the path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "kazadigate.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
