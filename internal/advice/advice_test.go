package advice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubBackend struct {
	text  string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *stubBackend) Generate(ctx context.Context, persona, prompt string) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func TestFallbacks(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name         string
		backend      Backend
		timeout      time.Duration
		wantGuidance string
		wantJournal  string
	}{
		{"no backend", nil, 0, GuidanceNoBackend, JournalNoBackend},
		{"backend error", &stubBackend{err: errors.New("quota exceeded")}, 0, GuidanceFailed, JournalFailed},
		{"empty text", &stubBackend{text: "   "}, 0, GuidanceEmpty, JournalEmpty},
		{"timeout", &stubBackend{text: "late", delay: time.Second}, 20 * time.Millisecond, GuidanceFailed, JournalFailed},
		{"success", &stubBackend{text: " Stay steady. "}, 0, "Stay steady.", "Stay steady."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.backend, tt.timeout)
			if got := a.GetGuidance(ctx, "How to control anger?", "Day 3 of 108"); got != tt.wantGuidance {
				t.Errorf("GetGuidance() = %q, want %q", got, tt.wantGuidance)
			}
			if got := a.AnalyzeEntry(ctx, "Felt restless in the evening"); got != tt.wantJournal {
				t.Errorf("AnalyzeEntry() = %q, want %q", got, tt.wantJournal)
			}
		})
	}
}

func TestNilBackendIsNotConfigured(t *testing.T) {
	if New(nil, 0).Configured() {
		t.Error("Configured() = true without a backend")
	}
	var a *Adviser
	if a.Configured() {
		t.Error("nil adviser reports configured")
	}
}

func TestSingleInFlightPerSite(t *testing.T) {
	backend := &stubBackend{text: "Be still.", delay: 100 * time.Millisecond}
	a := New(backend, time.Second)

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.GetGuidance(context.Background(), "focus", "")
		}(i)
	}
	wg.Wait()

	if n := backend.calls.Load(); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}
	for i, r := range results {
		if r != "Be still." {
			t.Errorf("results[%d] = %q", i, r)
		}
	}

	// A different site is not merged with guidance.
	a.AnalyzeEntry(context.Background(), "entry")
	if n := backend.calls.Load(); n != 2 {
		t.Errorf("backend calls after journal = %d, want 2", n)
	}
}

type echoBackend struct {
	delay time.Duration
	calls atomic.Int32
}

func (e *echoBackend) Generate(ctx context.Context, persona, prompt string) (string, error) {
	e.calls.Add(1)
	time.Sleep(e.delay)
	return prompt, nil
}

func TestConcurrentTopicsAreNotMerged(t *testing.T) {
	backend := &echoBackend{delay: 50 * time.Millisecond}
	a := New(backend, time.Second)

	topics := []string{"anger", "focus"}
	results := make([]string, len(topics))
	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			results[i] = a.GetGuidance(context.Background(), topic, "")
		}(i, topic)
	}
	wg.Wait()

	if n := backend.calls.Load(); n != 2 {
		t.Errorf("backend calls = %d, want 2", n)
	}
	for i, topic := range topics {
		if !strings.Contains(results[i], `"`+topic+`"`) {
			t.Errorf("answer for %q came from another question: %q", topic, results[i])
		}
	}
}
