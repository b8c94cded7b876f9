package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/julianstephens/brahmapath/internal/remote"
)

type recordingStore struct {
	remote.Offline
	mu       sync.Mutex
	failures int
	calls    []string
	err      error
}

func (s *recordingStore) Upsert(ctx context.Context, row remote.Row) error {
	return s.record("upsert:" + row.ID)
}

func (s *recordingStore) Update(ctx context.Context, id string, patch remote.Patch) error {
	return s.record("update:" + id)
}

func (s *recordingStore) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if s.err != nil {
		return s.err
	}
	if s.failures > 0 {
		s.failures--
		return errors.New("transient")
	}
	return nil
}

func fastBackoff() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func TestMirrorRunsInOrder(t *testing.T) {
	store := &recordingStore{}
	m := NewMirror(store, WithBackoff(fastBackoff))

	day := 2
	m.Upsert(remote.Row{ID: "u1"})
	m.Update("u1", remote.Patch{CurrentDay: &day})
	m.Update("u1", remote.Patch{})
	m.Upsert(remote.Row{ID: "u2"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Close(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"upsert:u1", "update:u1", "upsert:u2"}
	if len(store.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", store.calls, want)
	}
	for i := range want {
		if store.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, store.calls[i], want[i])
		}
	}
}

func TestMirrorRetriesTransientFailures(t *testing.T) {
	store := &recordingStore{failures: 2}
	m := NewMirror(store, WithBackoff(fastBackoff))
	m.Upsert(remote.Row{ID: "u1"})
	_ = m.Close(context.Background())

	if len(store.calls) != 3 {
		t.Errorf("attempts = %d, want 3", len(store.calls))
	}
}

// Failures are swallowed: the worker keeps going and callers never see them.
func TestMirrorSwallowsFailures(t *testing.T) {
	store := &recordingStore{err: errors.New("permission denied")}
	m := NewMirror(store, WithBackoff(fastBackoff))
	m.Upsert(remote.Row{ID: "u1"})
	m.Upsert(remote.Row{ID: "u2"})
	_ = m.Close(context.Background())

	if len(store.calls) != 6 {
		t.Errorf("calls = %v, want 3 attempts per job", store.calls)
	}
}

func TestMirrorPermanentErrorsAreNotRetried(t *testing.T) {
	store := &recordingStore{err: remote.ErrOffline}
	m := NewMirror(store, WithBackoff(fastBackoff))
	m.Upsert(remote.Row{ID: "u1"})
	_ = m.Close(context.Background())

	if len(store.calls) != 1 {
		t.Errorf("calls = %v, want a single attempt", store.calls)
	}
}

func TestMirrorSkipsAnonymousAndClosed(t *testing.T) {
	store := &recordingStore{}
	m := NewMirror(store, WithBackoff(fastBackoff))
	m.Upsert(remote.Row{})
	_ = m.Close(context.Background())
	m.Upsert(remote.Row{ID: "late"})
	_ = m.Close(context.Background())

	if len(store.calls) != 0 {
		t.Errorf("calls = %v, want none", store.calls)
	}
}

type blockingStore struct {
	remote.Offline
	release chan struct{}
}

func (s *blockingStore) Upsert(ctx context.Context, row remote.Row) error {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

func TestMirrorCloseHonoursDeadline(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	m := NewMirror(store, WithBackoff(fastBackoff))
	m.Upsert(remote.Row{ID: "u1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Close() error = %v, want deadline exceeded", err)
	}
	close(store.release)
}
