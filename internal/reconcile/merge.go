// Package reconcile decides the startup screen and keeps the remote
// profile in step with the local cache.
package reconcile

import (
	"strings"
	"time"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/models"
)

// SameIdentity reports whether both records belong to one user. A record
// without an email has not been tied to an account yet and matches anyone.
func SameIdentity(a, b models.Profile) bool {
	if a.Email == "" || b.Email == "" {
		return true
	}
	return strings.EqualFold(a.Email, b.Email)
}

// Merge combines the cached record with the one fetched from the remote.
// Progress never moves backwards: the later completion, the higher day and
// the newer journal entry win. Badges are recomputed from the merged day.
// For a different identity the remote record replaces the local one.
func Merge(local, fetched models.Profile) models.Profile {
	local = local.Normalize()
	fetched = fetched.Normalize()

	if !SameIdentity(local, fetched) {
		out := fetched.Clone()
		out.UnlockedBadges = badges.For(out.CurrentDay)
		return out
	}

	out := fetched.Clone()
	out.Name = local.Name
	if out.Email == "" {
		out.Email = local.Email
	}
	if out.Reason == "" {
		out.Reason = local.Reason
	}
	if out.Age == 0 {
		out.Age = local.Age
	}
	if out.StartDate.IsZero() {
		out.StartDate = local.StartDate
	}

	out.Onboarded = local.Onboarded || fetched.Onboarded
	out.Paid = local.Paid || fetched.Paid
	out.CurrentDay = max(local.CurrentDay, fetched.CurrentDay)
	out.LastCompletionTime = latest(local.LastCompletionTime, fetched.LastCompletionTime)

	for day, e := range local.JournalEntries {
		if cur, ok := out.JournalEntries[day]; !ok || e.Date.After(cur.Date) {
			out.JournalEntries[day] = e
		}
	}

	out.UnlockedBadges = badges.Union(local.UnlockedBadges, badges.For(out.CurrentDay))
	return out.Normalize()
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		t := *b
		return &t
	case b == nil || a.After(*b):
		t := *a
		return &t
	default:
		t := *b
		return &t
	}
}
