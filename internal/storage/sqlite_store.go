package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/migration"
	"github.com/julianstephens/brahmapath/internal/models"
	"github.com/julianstephens/brahmapath/migrations"
)

// SQLiteStore keeps the blob in the local_state key/value table.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	if s.db != nil {
		return nil
	}
	if err := ensureDir(s.path); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between the UI and mirror goroutines.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.runMigrations(context.Background()); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) runMigrations(ctx context.Context) error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	runner := migration.NewRunner(s.db, subFS, migration.SQLite)
	_, err = runner.Apply(ctx, func(msg string) {
		logger.Debug(msg, "store", s.path)
	})
	return err
}

func (s *SQLiteStore) Read() (models.Profile, error) {
	if err := s.Init(); err != nil {
		return models.Profile{}, err
	}

	var value string
	err := s.db.QueryRow("SELECT value FROM local_state WHERE key = ?", constants.ProfileStorageKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, ErrNoProfile
		}
		return models.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := models.DecodeProfile([]byte(value))
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return p, nil
}

func (s *SQLiteStore) Write(p models.Profile) error {
	if err := s.Init(); err != nil {
		return err
	}
	data, err := p.Encode()
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO local_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		constants.ProfileStorageKey, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if err := s.Init(); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM local_state WHERE key = ?", constants.ProfileStorageKey); err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}

// UpdatedAt reports when the blob was last written.
func (s *SQLiteStore) UpdatedAt() (time.Time, error) {
	if err := s.Init(); err != nil {
		return time.Time{}, err
	}
	var raw string
	err := s.db.QueryRow("SELECT updated_at FROM local_state WHERE key = ?", constants.ProfileStorageKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNoProfile
		}
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, raw)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}
