package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultDBFile          = "pomodoko.db"
	DefaultPreferencesFile = "preferences.json"
)

// Presence reports which datastore files exist.
type Presence struct {
	Database    bool
	Preferences bool
}

// Complete is true when both files exist.
func (p Presence) Complete() bool {
	return p.Database && p.Preferences
}

// CheckExists stats the database and the preference document without
// creating either. A path that names a directory is an error.
func CheckExists(dbPath, preferencesPath string) (Presence, error) {
	var p Presence
	var err error
	if p.Database, err = fileExists(dbPath); err != nil {
		return Presence{}, err
	}
	if p.Preferences, err = fileExists(preferencesPath); err != nil {
		return Presence{}, err
	}
	return p, nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: %w", ErrStoreOpen, err)
	case info.IsDir():
		return false, fmt.Errorf("%w: %s is a directory", ErrStoreOpen, path)
	}
	return true, nil
}

// GetStorePath returns the directory holding the datastore and the
// preference document. It is the per-user config directory when one is
// available, otherwise the current working directory.
func GetStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "."
	}
	return filepath.Join(dir, "pomodoko")
}

// GetDBPath returns the full path to the database file.
func GetDBPath(storePath string) string {
	return filepath.Join(storePath, DefaultDBFile)
}

// GetPreferencesPath returns the full path to the preference document.
func GetPreferencesPath(storePath string) string {
	return filepath.Join(storePath, DefaultPreferencesFile)
}

// EnsureDir creates the datastore directory if it does not exist.
func EnsureDir(storePath string) error {
	if err := os.MkdirAll(storePath, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrStoreOpen, storePath, err)
	}
	return nil
}
