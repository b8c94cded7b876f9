// Package keyring stores the client's secrets in the OS keyring: the advice
// API key, the remote connection string and the current session token.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/brahmapath/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the entry.
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry names a secret slot.
type Entry string

const (
	AdviceKey    Entry = constants.KeyringAdviceKey
	Remote       Entry = constants.KeyringRemote
	SessionToken Entry = constants.KeyringSessionToken
)

// Entries lists the slots a user may manage from the CLI.
var Entries = []Entry{AdviceKey, Remote}

// ParseEntry accepts the short CLI names.
func ParseEntry(name string) (Entry, error) {
	switch name {
	case "advice-key", string(AdviceKey):
		return AdviceKey, nil
	case "remote", string(Remote):
		return Remote, nil
	}
	return "", fmt.Errorf("unknown keyring entry %q (want advice-key or remote)", name)
}

func Get(e Entry) (string, error) {
	v, err := keyring.Get(constants.AppName, string(e))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func Set(e Entry, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", e)
	}
	if err := keyring.Set(constants.AppName, string(e), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", e, err)
	}
	return nil
}

func Delete(e Entry) error {
	err := keyring.Delete(constants.AppName, string(e))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", e, err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// TokenStore keeps the remote session token in the keyring.
type TokenStore struct{}

func (TokenStore) Load() (string, error) {
	return Get(SessionToken)
}

func (TokenStore) Save(token string) error {
	return Set(SessionToken, token)
}

// Clear is idempotent.
func (TokenStore) Clear() error {
	if err := Delete(SessionToken); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
