package storage

import (
	"errors"

	"github.com/julianstephens/brahmapath/internal/models"
)

var (
	// ErrNoProfile is returned by Read when nothing has been cached yet.
	ErrNoProfile = errors.New("no cached profile")
	// ErrCorrupt wraps decode failures of the cached blob.
	ErrCorrupt = errors.New("cached profile is corrupt")
)

// Cache holds the single on-device profile blob stored under
// constants.ProfileStorageKey.
type Cache interface {
	// Init prepares the backing file. Safe to call on an existing cache.
	Init() error
	Read() (models.Profile, error)
	// Write replaces the blob. It is the commit point of every change.
	Write(models.Profile) error
	// Clear removes the blob. Clearing an empty cache is not an error.
	Clear() error
	Close() error

	GetConfigPath() string
}
