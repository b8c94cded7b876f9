// Package gate decides when the daily accountability action is available.
//
// Every function is pure: the last completion time and the current time are
// always passed in, so callers (and tests) control the clock.
package gate

import (
	"fmt"
	"time"

	"github.com/julianstephens/brahmapath/internal/constants"
)

// Status is a snapshot of the gate at one instant.
type Status struct {
	Locked    bool
	Remaining time.Duration
	// Label is the countdown text, empty when the gate is open.
	Label     string
	UnlocksAt time.Time
}

// IsLocked reports whether fewer than 24h have passed since last.
// A nil last means no completion was ever recorded.
func IsLocked(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	return now.Sub(*last) < constants.GateWindow
}

// Remaining returns how long until the gate opens. ok is false when the
// gate is already open.
func Remaining(last *time.Time, now time.Time) (d time.Duration, ok bool) {
	if !IsLocked(last, now) {
		return 0, false
	}
	return constants.GateWindow - now.Sub(*last), true
}

// FormatRemaining renders d as "<h>h <m>m", flooring both parts.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}

// Check bundles IsLocked, Remaining and FormatRemaining.
func Check(last *time.Time, now time.Time) Status {
	d, locked := Remaining(last, now)
	if !locked {
		return Status{}
	}
	return Status{
		Locked:    true,
		Remaining: d,
		Label:     FormatRemaining(d),
		UnlocksAt: last.Add(constants.GateWindow),
	}
}
