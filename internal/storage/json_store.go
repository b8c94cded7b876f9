package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/brahmapath/internal/models"
)

// JSONStore keeps the blob in a single file; the file is the storage key.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	return ensureDir(s.path)
}

func (s *JSONStore) Read() (models.Profile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Profile{}, ErrNoProfile
		}
		return models.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := models.DecodeProfile(data)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return p, nil
}

// Write goes through a temp file so a crash never leaves half a blob.
func (s *JSONStore) Write(p models.Profile) error {
	data, err := p.Encode()
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	if err := ensureDir(s.path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".brahma_user-*.json")
	if err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func (s *JSONStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
