package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome    = "SCATTERBRAIN_LOCALSTATE_HOME" // explicit override, used by tests
	xdgAppDir  = "scatterbrain"                 // under $XDG_DATA_HOME
	dirName    = ".scatterbrain"                // default under $HOME
	dbFilename = "local.db"
)

// DataDir returns the directory holding local state, created with 0700 permissions.
// Resolution order: SCATTERBRAIN_LOCALSTATE_HOME, $XDG_DATA_HOME/scatterbrain, ~/.scatterbrain.
func DataDir() (string, error) {
	dir := os.Getenv(envHome)
	if dir == "" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
			dir = filepath.Join(xdg, xdgAppDir)
		}
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return dir, nil
}

// DBPath returns the path of the local state SQLite file.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}
