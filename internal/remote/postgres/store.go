// Package postgres is the production remote: accounts, sessions and
// profiles in a PostgreSQL schema reached through pgx.
package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/brahmapath/internal/remote"
)

// TokenStore persists the opaque session token on this device.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type Option func(*Store)

// WithEmailConfirmation makes SignUp return no session until the account
// is confirmed out of band.
func WithEmailConfirmation() Option {
	return func(s *Store) { s.requireConfirmation = true }
}

func WithHasher(h PasswordHasher) Option {
	return func(s *Store) { s.hasher = h }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	conn   PgConnection
	tokens TokenStore
	hasher PasswordHasher
	now    func() time.Time

	requireConfirmation bool

	mu        sync.Mutex
	session   *remote.Session
	listeners map[int]remote.SessionListener
	nextID    int
}

var _ remote.Remote = (*Store)(nil)

// New opens a pool against connStr and checks it is reachable.
func New(ctx context.Context, connStr string, tokens TokenStore, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(ctx, withSearchPath(connStr))
	if err != nil {
		return nil, fmt.Errorf("creating remote pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, connectHint(err, connStr)
	}
	return NewWithConn(pool, tokens, opts...), nil
}

func NewWithConn(conn PgConnection, tokens TokenStore, opts ...Option) *Store {
	s := &Store{
		conn:      conn,
		tokens:    tokens,
		hasher:    bcryptHasher{cost: bcrypt.DefaultCost},
		now:       time.Now,
		listeners: make(map[int]remote.SessionListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() {
	if c, ok := s.conn.(interface{ Close() }); ok {
		c.Close()
	}
}
