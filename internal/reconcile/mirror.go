package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/remote"
)

type job struct {
	name   string
	userID string
	run    func(ctx context.Context) error
}

// Mirror pushes profile writes to the remote in the background. Jobs run
// one at a time in submission order. A job that still fails after its
// retries is logged and dropped; the local cache stays authoritative.
type Mirror struct {
	store remote.ProfileStore

	attemptTimeout time.Duration
	maxAttempts    uint64
	newBackoff     func() backoff.BackOff

	jobs chan job
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

type MirrorOption func(*Mirror)

func WithAttemptTimeout(d time.Duration) MirrorOption {
	return func(m *Mirror) { m.attemptTimeout = d }
}

func WithBackoff(fn func() backoff.BackOff) MirrorOption {
	return func(m *Mirror) { m.newBackoff = fn }
}

func NewMirror(store remote.ProfileStore, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		store:          store,
		attemptTimeout: constants.MirrorAttemptTimeout,
		maxAttempts:    constants.MirrorMaxAttempts,
		newBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		jobs: make(chan job, constants.MirrorQueueSize),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.worker()
	return m
}

// Upsert queues a full write of row.
func (m *Mirror) Upsert(row remote.Row) {
	m.enqueue(job{
		name:   "upsert",
		userID: row.ID,
		run:    func(ctx context.Context) error { return m.store.Upsert(ctx, row) },
	})
}

// Update queues a partial write. Empty patches are skipped.
func (m *Mirror) Update(userID string, patch remote.Patch) {
	if patch.Empty() {
		return
	}
	m.enqueue(job{
		name:   "update",
		userID: userID,
		run:    func(ctx context.Context) error { return m.store.Update(ctx, userID, patch) },
	})
}

func (m *Mirror) enqueue(j job) {
	if j.userID == "" {
		logger.Debug("mirror: skipping write without user id", "job", j.name)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		logger.Warn("mirror: dropping write after shutdown", "job", j.name, "user", j.userID)
		return
	}
	select {
	case m.jobs <- j:
	default:
		logger.Warn("mirror: queue full, dropping write", "job", j.name, "user", j.userID)
	}
}

func (m *Mirror) worker() {
	defer close(m.done)
	for j := range m.jobs {
		m.execute(j)
	}
}

func (m *Mirror) execute(j job) {
	attempts := 0
	op := func() error {
		attempts++
		ctx, cancel := context.WithTimeout(context.Background(), m.attemptTimeout)
		defer cancel()
		err := j.run(ctx)
		if errors.Is(err, remote.ErrOffline) || errors.Is(err, remote.ErrProfileNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithMaxRetries(m.newBackoff(), m.maxAttempts-1)
	if err := backoff.Retry(op, b); err != nil {
		logger.Warn("mirror: remote write failed", "job", j.name, "user", j.userID, "attempts", attempts, "error", err)
		return
	}
	logger.Debug("mirror: remote write ok", "job", j.name, "user", j.userID, "attempts", attempts)
}

// Close stops accepting jobs and waits for queued ones until ctx ends.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.jobs)
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		logger.Warn("mirror: shutdown before queue drained", "pending", len(m.jobs))
		return ctx.Err()
	}
}
