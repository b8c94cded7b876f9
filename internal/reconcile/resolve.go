package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/models"
	"github.com/julianstephens/brahmapath/internal/remote"
	"github.com/julianstephens/brahmapath/internal/storage"
)

// Source says where the resolved record came from.
type Source int

const (
	SourceDefault Source = iota
	SourceLocal
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	}
	return "default"
}

// Resolution is the single outcome of startup.
type Resolution struct {
	Screen  flow.Screen
	Profile models.Profile
	Session *remote.Session
	Source  Source
	Reason  string
	// Writeback is set when the merged record differs from the remote row.
	Writeback *remote.Patch
	// Err is the reconciliation failure that forced a local-only result.
	Err error
}

type Resolver struct {
	Cache   storage.Cache
	Remote  remote.Remote
	Now     func() time.Time
	Timeout time.Duration
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// LoadLocal reads the cached record, falling back to a fresh one when the
// cache is empty or unreadable.
func (r *Resolver) LoadLocal() (models.Profile, Source) {
	p, err := r.Cache.Read()
	switch {
	case err == nil:
		return p, SourceLocal
	case errors.Is(err, storage.ErrNoProfile):
		return models.NewProfile(r.now()), SourceDefault
	default:
		logger.Warn("local profile unreadable, starting fresh", "path", r.Cache.GetConfigPath(), "error", err)
		return models.NewProfile(r.now()), SourceDefault
	}
}

// Resolve runs the startup steps in order and picks the first screen.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	local, source := r.LoadLocal()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = constants.ResolveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := r.Remote.GetSession(ctx)
	if errors.Is(err, remote.ErrNoSession) {
		local.Authenticated = false
		res := Resolution{Profile: local, Source: source}
		if !local.Onboarded {
			res.Screen, res.Reason = flow.Landing, "no session, not onboarded"
		} else {
			res.Screen, res.Reason = flow.Auth, "no session, onboarded"
		}
		return res
	}
	if err != nil {
		return offline(local, source, err)
	}

	row, err := r.Remote.Get(ctx, session.UserID)
	if errors.Is(err, remote.ErrProfileNotFound) {
		local.Authenticated = true
		local.Email = session.Email
		return Resolution{
			Screen:  flow.Onboarding,
			Profile: local,
			Session: &session,
			Source:  source,
			Reason:  "session without remote profile",
		}
	}
	if err != nil {
		return offline(local, source, err)
	}

	fetched, unknown := row.Profile()
	if len(unknown) > 0 {
		logger.Warn("ignoring unknown remote badge ids", "ids", unknown)
	}
	merged := Merge(local, fetched)
	merged.Authenticated = true
	merged.Email = session.Email

	res := Resolution{
		Profile: merged,
		Session: &session,
		Source:  SourceRemote,
	}
	if patch := remote.Diff(row, remote.RowFromProfile(session.UserID, merged)); !patch.Empty() {
		res.Writeback = &patch
	}
	if merged.Paid {
		res.Screen, res.Reason = flow.Dashboard, "session, paid"
	} else {
		res.Screen, res.Reason = flow.Payment, "session, unpaid"
	}
	return res
}

// offline resolves from the cache alone after a remote failure.
func offline(local models.Profile, source Source, err error) Resolution {
	if !errors.Is(err, remote.ErrOffline) {
		logger.Warn("reconciliation failed, continuing offline", "error", err)
	}
	res := Resolution{Profile: local, Source: source, Err: err}
	switch {
	case !local.Onboarded:
		res.Screen, res.Reason = flow.Landing, "offline, not onboarded"
	case !local.Authenticated:
		res.Screen, res.Reason = flow.Auth, "offline, not authenticated"
	case local.Paid:
		res.Screen, res.Reason = flow.Dashboard, "offline, paid"
	default:
		res.Screen, res.Reason = flow.Auth, "offline, unpaid"
	}
	return res
}
