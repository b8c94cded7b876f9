// Package remote declares the account and profile collaborators the client
// syncs with. Implementations live in subpackages.
package remote

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	// ErrEmailNotConfirmed means the account exists but no session was issued.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	ErrProfileNotFound   = errors.New("remote profile not found")
	ErrNoSession         = errors.New("no active session")
	ErrOffline           = errors.New("remote is not configured")
)

// Session is an authenticated identity. Token is opaque to callers.
type Session struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

func (s Session) Valid(now time.Time) bool {
	return s.UserID != "" && s.Token != "" && now.Before(s.ExpiresAt)
}

// SignUpResult carries the new account id. Session is nil when the account
// still has to be confirmed.
type SignUpResult struct {
	UserID  string
	Session *Session
}

// SessionListener is called with the new session, or nil when it ended.
type SessionListener func(s *Session)

type Auth interface {
	SignUp(ctx context.Context, email, password string) (SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	// GetSession returns ErrNoSession when nobody is signed in.
	GetSession(ctx context.Context) (Session, error)
	SignOut(ctx context.Context) error
	// OnSessionChange registers fn and returns a function that removes it.
	OnSessionChange(fn SessionListener) (unsubscribe func())
}

type ProfileStore interface {
	Upsert(ctx context.Context, row Row) error
	// Get returns ErrProfileNotFound when the user has no row.
	Get(ctx context.Context, id string) (Row, error)
	Update(ctx context.Context, id string, patch Patch) error
}

// Remote bundles both collaborators behind one connection.
type Remote interface {
	Auth
	ProfileStore
	Close()
}
