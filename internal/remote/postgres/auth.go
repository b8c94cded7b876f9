package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/remote"
)

const (
	insertAccountQuery = `INSERT INTO accounts (id, email, password_hash, confirmed) VALUES ($1, $2, $3, $4);`
	findAccountQuery   = `SELECT id, password_hash, confirmed FROM accounts WHERE email = $1;`
	insertSessionQuery = `INSERT INTO sessions (token_hash, account_id, expires_at) VALUES ($1, $2, $3);`
	findSessionQuery   = `SELECT s.account_id, a.email, s.expires_at FROM sessions s JOIN accounts a ON a.id = s.account_id WHERE s.token_hash = $1;`
	deleteSessionQuery = `DELETE FROM sessions WHERE token_hash = $1;`
)

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) SignUp(ctx context.Context, email, password string) (remote.SignUpResult, error) {
	email = normalizeEmail(email)
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return remote.SignUpResult{}, fmt.Errorf("hashing password: %w", err)
	}

	id := uuid.NewString()
	_, err = s.conn.Exec(ctx, insertAccountQuery, id, email, hash, !s.requireConfirmation)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return remote.SignUpResult{}, remote.ErrEmailTaken
		}
		return remote.SignUpResult{}, fmt.Errorf("creating account: %w", err)
	}

	if s.requireConfirmation {
		return remote.SignUpResult{UserID: id}, nil
	}
	session, err := s.issueSession(ctx, id, email)
	if err != nil {
		return remote.SignUpResult{UserID: id}, err
	}
	return remote.SignUpResult{UserID: id, Session: &session}, nil
}

func (s *Store) SignInWithPassword(ctx context.Context, email, password string) (remote.Session, error) {
	email = normalizeEmail(email)

	var (
		id        string
		hash      string
		confirmed bool
	)
	err := s.conn.QueryRow(ctx, findAccountQuery, email).Scan(&id, &hash, &confirmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return remote.Session{}, remote.ErrInvalidCredentials
		}
		return remote.Session{}, fmt.Errorf("looking up account: %w", err)
	}
	if err := s.hasher.Compare(hash, password); err != nil {
		return remote.Session{}, remote.ErrInvalidCredentials
	}
	if !confirmed {
		return remote.Session{}, remote.ErrEmailNotConfirmed
	}
	return s.issueSession(ctx, id, email)
}

func (s *Store) issueSession(ctx context.Context, userID, email string) (remote.Session, error) {
	token := uuid.NewString()
	session := remote.Session{
		UserID:    userID,
		Email:     email,
		Token:     token,
		ExpiresAt: s.now().Add(constants.SessionTTL),
	}
	if _, err := s.conn.Exec(ctx, insertSessionQuery, hashToken(token), userID, session.ExpiresAt); err != nil {
		return remote.Session{}, fmt.Errorf("creating session: %w", err)
	}
	if err := s.tokens.Save(token); err != nil {
		logger.Warn("session token not persisted; sign-in lasts for this run only", "error", err)
	}
	s.setSession(&session)
	return session, nil
}

// GetSession restores the session from the stored token on first use.
func (s *Store) GetSession(ctx context.Context) (remote.Session, error) {
	s.mu.Lock()
	cached := s.session
	s.mu.Unlock()
	if cached != nil && cached.Valid(s.now()) {
		return *cached, nil
	}

	token, err := s.tokens.Load()
	if err != nil || token == "" {
		return remote.Session{}, remote.ErrNoSession
	}

	session := remote.Session{Token: token}
	err = s.conn.QueryRow(ctx, findSessionQuery, hashToken(token)).Scan(&session.UserID, &session.Email, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.forgetToken()
			return remote.Session{}, remote.ErrNoSession
		}
		return remote.Session{}, fmt.Errorf("looking up session: %w", err)
	}
	if !session.Valid(s.now()) {
		if _, err := s.conn.Exec(ctx, deleteSessionQuery, hashToken(token)); err != nil {
			logger.Debug("failed to delete expired session", "error", err)
		}
		s.forgetToken()
		return remote.Session{}, remote.ErrNoSession
	}

	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()
	return session, nil
}

// SignOut always drops the local session, even when the remote delete fails.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	var token string
	if s.session != nil {
		token = s.session.Token
	}
	s.mu.Unlock()
	if token == "" {
		token, _ = s.tokens.Load()
	}

	var err error
	if token != "" {
		if _, execErr := s.conn.Exec(ctx, deleteSessionQuery, hashToken(token)); execErr != nil {
			err = fmt.Errorf("deleting session: %w", execErr)
		}
	}
	s.forgetToken()
	s.setSession(nil)
	return err
}

func (s *Store) forgetToken() {
	if err := s.tokens.Clear(); err != nil {
		logger.Warn("failed to clear session token", "error", err)
	}
}

func (s *Store) OnSessionChange(fn remote.SessionListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) setSession(session *remote.Session) {
	s.mu.Lock()
	s.session = session
	listeners := make([]remote.SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		if session == nil {
			fn(nil)
			continue
		}
		copied := *session
		fn(&copied)
	}
}
