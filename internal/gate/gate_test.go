package gate

import (
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestIsLocked(t *testing.T) {
	tests := []struct {
		name string
		last *time.Time
		now  time.Time
		want bool
	}{
		{name: "no completion yet", last: nil, now: base, want: false},
		{name: "just completed", last: ptr(base), now: base, want: true},
		{name: "23h59m later", last: ptr(base), now: base.Add(23*time.Hour + 59*time.Minute), want: true},
		{name: "one nanosecond before 24h", last: ptr(base), now: base.Add(24*time.Hour - 1), want: true},
		{name: "exactly 24h later", last: ptr(base), now: base.Add(24 * time.Hour), want: false},
		{name: "days later", last: ptr(base), now: base.Add(72 * time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocked(tt.last, tt.now); got != tt.want {
				t.Errorf("IsLocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLockedIsPure(t *testing.T) {
	last := ptr(base)
	now := base.Add(5 * time.Hour)
	first := IsLocked(last, now)
	for i := 0; i < 100; i++ {
		if IsLocked(last, now) != first {
			t.Fatal("IsLocked returned a different result for identical inputs")
		}
	}
	if !last.Equal(base) {
		t.Error("IsLocked mutated its input")
	}
}

func TestRemaining(t *testing.T) {
	if _, ok := Remaining(nil, base); ok {
		t.Error("Remaining(nil) should report an open gate")
	}

	d, ok := Remaining(ptr(base), base.Add(23*time.Hour+59*time.Minute))
	if !ok {
		t.Fatal("expected locked gate")
	}
	if d != time.Minute {
		t.Errorf("Remaining() = %v, want 1m", d)
	}

	if _, ok := Remaining(ptr(base), base.Add(24*time.Hour)); ok {
		t.Error("gate should be open at exactly 24h")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 24 * time.Hour, want: "24h 0m"},
		{d: 23*time.Hour + 59*time.Minute + 59*time.Second, want: "23h 59m"},
		{d: time.Minute, want: "0h 1m"},
		{d: 59 * time.Second, want: "0h 0m"},
		{d: 90 * time.Minute, want: "1h 30m"},
		{d: -time.Minute, want: "0h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatRemaining(tt.d); got != tt.want {
				t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	t.Run("open gate", func(t *testing.T) {
		s := Check(nil, base)
		if s.Locked || s.Label != "" || s.Remaining != 0 {
			t.Errorf("Check(nil) = %+v, want zero status", s)
		}
	})

	t.Run("one minute left", func(t *testing.T) {
		s := Check(ptr(base), base.Add(23*time.Hour+59*time.Minute))
		if !s.Locked {
			t.Fatal("expected locked")
		}
		if s.Label != "0h 1m" {
			t.Errorf("Label = %q, want %q", s.Label, "0h 1m")
		}
		if !s.UnlocksAt.Equal(base.Add(24 * time.Hour)) {
			t.Errorf("UnlocksAt = %v", s.UnlocksAt)
		}
	})

	t.Run("seconds truncate below a minute", func(t *testing.T) {
		s := Check(ptr(base), base.Add(23*time.Hour+59*time.Minute+30*time.Second))
		if s.Label != "0h 0m" {
			t.Errorf("Label = %q, want %q", s.Label, "0h 0m")
		}
	})
}
