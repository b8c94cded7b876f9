// Package storage is the on-device cache of the profile record.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// New picks the backend from the file extension: *.db is SQLite, anything
// else is a plain JSON file.
func New(path string) (Cache, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(expanded), nil
	default:
		return NewJSONStore(expanded), nil
	}
}

// ExpandPath resolves a leading ~ against the home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}
