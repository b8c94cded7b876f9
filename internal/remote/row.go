package remote

import (
	"time"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/models"
)

// Row is the remote shape of a profile, one per user id.
type Row struct {
	ID                 string
	Email              string
	Age                int
	Reason             string
	StartDate          time.Time
	CurrentDay         int
	UnlockedBadges     []string
	JournalEntries     map[int]models.JournalEntry
	HasPaid            bool
	IsOnboarded        bool
	LastCompletionTime *time.Time
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	CurrentDay         *int
	UnlockedBadges     []string
	JournalEntries     map[int]models.JournalEntry
	HasPaid            *bool
	LastCompletionTime *time.Time
}

func (p Patch) Empty() bool {
	return p.CurrentDay == nil && p.UnlockedBadges == nil && p.JournalEntries == nil &&
		p.HasPaid == nil && p.LastCompletionTime == nil
}

// RowFromProfile builds the row mirrored for user id.
func RowFromProfile(id string, p models.Profile) Row {
	p = p.Normalize()
	entries := make(map[int]models.JournalEntry, len(p.JournalEntries))
	for day, e := range p.JournalEntries {
		entries[day] = e
	}
	var last *time.Time
	if p.LastCompletionTime != nil {
		t := *p.LastCompletionTime
		last = &t
	}
	return Row{
		ID:                 id,
		Email:              p.Email,
		Age:                p.Age,
		Reason:             p.Reason,
		StartDate:          p.StartDate,
		CurrentDay:         p.CurrentDay,
		UnlockedBadges:     badges.IDs(p.UnlockedBadges),
		JournalEntries:     entries,
		HasPaid:            p.Paid,
		IsOnboarded:        p.Onboarded,
		LastCompletionTime: last,
	}
}

// Profile converts r into the local record. Badge ids the client does not
// know are returned separately and left out.
func (r Row) Profile() (models.Profile, []string) {
	kinds, unknown := badges.ParseIDs(r.UnlockedBadges)
	p := models.Profile{
		Onboarded:          r.IsOnboarded,
		Paid:               r.HasPaid,
		Identity:           models.Identity{Email: r.Email},
		Age:                r.Age,
		Reason:             r.Reason,
		StartDate:          r.StartDate,
		CurrentDay:         r.CurrentDay,
		LastCompletionTime: r.LastCompletionTime,
		JournalEntries:     r.JournalEntries,
		UnlockedBadges:     kinds,
	}
	return p.Clone().Normalize(), unknown
}

// Diff returns the patch that turns from into to. Identity and intake
// fields are never patched.
func Diff(from, to Row) Patch {
	var patch Patch
	if from.CurrentDay != to.CurrentDay {
		day := to.CurrentDay
		patch.CurrentDay = &day
	}
	if !sameStrings(from.UnlockedBadges, to.UnlockedBadges) {
		patch.UnlockedBadges = append([]string{}, to.UnlockedBadges...)
	}
	if !sameEntries(from.JournalEntries, to.JournalEntries) {
		patch.JournalEntries = make(map[int]models.JournalEntry, len(to.JournalEntries))
		for day, e := range to.JournalEntries {
			patch.JournalEntries[day] = e
		}
	}
	if from.HasPaid != to.HasPaid {
		paid := to.HasPaid
		patch.HasPaid = &paid
	}
	if !sameTime(from.LastCompletionTime, to.LastCompletionTime) && to.LastCompletionTime != nil {
		t := *to.LastCompletionTime
		patch.LastCompletionTime = &t
	}
	return patch
}

// Apply returns r with patch applied.
func (r Row) Apply(patch Patch) Row {
	if patch.CurrentDay != nil {
		r.CurrentDay = *patch.CurrentDay
	}
	if patch.UnlockedBadges != nil {
		r.UnlockedBadges = append([]string{}, patch.UnlockedBadges...)
	}
	if patch.JournalEntries != nil {
		r.JournalEntries = make(map[int]models.JournalEntry, len(patch.JournalEntries))
		for day, e := range patch.JournalEntries {
			r.JournalEntries[day] = e
		}
	}
	if patch.HasPaid != nil {
		r.HasPaid = *patch.HasPaid
	}
	if patch.LastCompletionTime != nil {
		t := *patch.LastCompletionTime
		r.LastCompletionTime = &t
	}
	return r
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameEntries(a, b map[int]models.JournalEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for day, ea := range a {
		eb, ok := b[day]
		if !ok || ea.WhyStarted != eb.WhyStarted || ea.Temptations != eb.Temptations ||
			ea.DailyAnswer != eb.DailyAnswer || !ea.Date.Equal(eb.Date) {
			return false
		}
	}
	return true
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
