// Package progression applies completion and journal events to a profile.
// Functions take a record and return the next one; persistence happens at
// the caller.
package progression

import (
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/gate"
	"github.com/julianstephens/brahmapath/internal/models"
)

var (
	// ErrGateLocked is returned when a completion is attempted inside the
	// 24h window. The record is returned unchanged.
	ErrGateLocked = errors.New("daily action already completed")
	// ErrJournalClosed is returned when the journal is written before the
	// day's action is complete.
	ErrJournalClosed = errors.New("journal is closed until today's action is complete")
	ErrEmptyJournal  = errors.New("journal answer is empty")
)

// ApplyCompletion advances the program by one day.
func ApplyCompletion(p models.Profile, now time.Time) (models.Profile, error) {
	if gate.IsLocked(p.LastCompletionTime, now) {
		return p, ErrGateLocked
	}

	next := p.Clone().Normalize()
	completed := now
	next.LastCompletionTime = &completed
	if next.CurrentDay < constants.ProgramDays {
		next.CurrentDay++
	}
	next.UnlockedBadges = badges.Union(next.UnlockedBadges, badges.For(next.CurrentDay))
	return next, nil
}

// JournalOpen reports whether a reflection can be written: only after the
// day's action, while the gate is counting down.
func JournalOpen(p models.Profile, now time.Time) bool {
	return gate.IsLocked(p.LastCompletionTime, now)
}

// NewEntry builds the entry for a submission. WhyStarted is always the
// onboarding reason.
func NewEntry(p models.Profile, answer, temptations string, now time.Time) models.JournalEntry {
	return models.JournalEntry{
		WhyStarted:  p.Reason,
		Temptations: strings.TrimSpace(temptations),
		DailyAnswer: strings.TrimSpace(answer),
		Date:        now,
	}
}

// RecordJournal stores entry under the current day, replacing any earlier
// entry for that day.
func RecordJournal(p models.Profile, entry models.JournalEntry, now time.Time) (models.Profile, error) {
	if strings.TrimSpace(entry.DailyAnswer) == "" {
		return p, ErrEmptyJournal
	}
	if !JournalOpen(p, now) {
		return p, ErrJournalClosed
	}

	next := p.Clone().Normalize()
	next.JournalEntries[next.CurrentDay] = entry
	return next, nil
}

// Onboard records the intake answers. Re-onboarding overwrites them.
func Onboard(p models.Profile, age int, reason string, now time.Time) models.Profile {
	next := p.Clone().Normalize()
	next.Onboarded = true
	next.Age = age
	next.Reason = reason
	next.StartDate = now
	return next
}

// MarkPaid is one-way.
func MarkPaid(p models.Profile) models.Profile {
	next := p.Clone()
	next.Paid = true
	return next
}
