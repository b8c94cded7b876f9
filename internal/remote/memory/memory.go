// Package memory is an in-process remote used by tests and local demos.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/remote"
)

type account struct {
	id        string
	password  string
	confirmed bool
}

type Remote struct {
	mu        sync.Mutex
	now       func() time.Time
	accounts  map[string]account
	profiles  map[string]remote.Row
	session   *remote.Session
	listeners map[int]remote.SessionListener
	nextID    int

	// RequireConfirmation makes SignUp return no session.
	RequireConfirmation bool
	// Err, when set, is returned by every call that would touch the network.
	Err error
	// Calls counts profile writes, for asserting on mirror traffic.
	Calls int
}

var _ remote.Remote = (*Remote)(nil)

func New() *Remote {
	return &Remote{
		now:       time.Now,
		accounts:  make(map[string]account),
		profiles:  make(map[string]remote.Row),
		listeners: make(map[int]remote.SessionListener),
	}
}

func (r *Remote) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *Remote) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *Remote) SignUp(ctx context.Context, email, password string) (remote.SignUpResult, error) {
	r.mu.Lock()
	if r.Err != nil {
		defer r.mu.Unlock()
		return remote.SignUpResult{}, r.Err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := r.accounts[email]; ok {
		r.mu.Unlock()
		return remote.SignUpResult{}, remote.ErrEmailTaken
	}
	acct := account{id: uuid.NewString(), password: password, confirmed: !r.RequireConfirmation}
	r.accounts[email] = acct
	r.mu.Unlock()

	if !acct.confirmed {
		return remote.SignUpResult{UserID: acct.id}, nil
	}
	s := r.issue(acct.id, email)
	return remote.SignUpResult{UserID: acct.id, Session: &s}, nil
}

// Confirm marks an account confirmed, as clicking the e-mail link would.
func (r *Remote) Confirm(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[email]; ok {
		a.confirmed = true
		r.accounts[email] = a
	}
}

func (r *Remote) SignInWithPassword(ctx context.Context, email, password string) (remote.Session, error) {
	r.mu.Lock()
	if r.Err != nil {
		defer r.mu.Unlock()
		return remote.Session{}, r.Err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	acct, ok := r.accounts[email]
	r.mu.Unlock()

	if !ok || acct.password != password {
		return remote.Session{}, remote.ErrInvalidCredentials
	}
	if !acct.confirmed {
		return remote.Session{}, remote.ErrEmailNotConfirmed
	}
	return r.issue(acct.id, email), nil
}

func (r *Remote) issue(id, email string) remote.Session {
	r.mu.Lock()
	s := remote.Session{
		UserID:    id,
		Email:     email,
		Token:     uuid.NewString(),
		ExpiresAt: r.now().Add(constants.SessionTTL),
	}
	r.session = &s
	r.mu.Unlock()
	r.notify(&s)
	return s
}

func (r *Remote) GetSession(ctx context.Context) (remote.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return remote.Session{}, r.Err
	}
	if r.session == nil || !r.session.Valid(r.now()) {
		return remote.Session{}, remote.ErrNoSession
	}
	return *r.session, nil
}

func (r *Remote) SignOut(ctx context.Context) error {
	r.mu.Lock()
	err := r.Err
	r.session = nil
	r.mu.Unlock()
	r.notify(nil)
	return err
}

// EndSession simulates the server revoking the session.
func (r *Remote) EndSession() {
	r.mu.Lock()
	r.session = nil
	r.mu.Unlock()
	r.notify(nil)
}

func (r *Remote) OnSessionChange(fn remote.SessionListener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *Remote) notify(s *remote.Session) {
	r.mu.Lock()
	fns := make([]remote.SessionListener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (r *Remote) Upsert(ctx context.Context, row remote.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Calls++
	r.profiles[row.ID] = row.Apply(remote.Patch{})
	return nil
}

func (r *Remote) Get(ctx context.Context, id string) (remote.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return remote.Row{}, r.Err
	}
	row, ok := r.profiles[id]
	if !ok {
		return remote.Row{}, remote.ErrProfileNotFound
	}
	return row, nil
}

func (r *Remote) Update(ctx context.Context, id string, patch remote.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	row, ok := r.profiles[id]
	if !ok {
		return remote.ErrProfileNotFound
	}
	r.Calls++
	r.profiles[id] = row.Apply(patch)
	return nil
}

// Profile returns the stored row for assertions.
func (r *Remote) Profile(id string) (remote.Row, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.profiles[id]
	return row, ok
}

// Seed stores row directly, bypassing Err and Calls.
func (r *Remote) Seed(row remote.Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[row.ID] = row
}

// UserID returns the account id for email.
func (r *Remote) UserID(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[email].id
}

func (r *Remote) Close() {}
