package progression

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/models"
)

var start = time.Date(2026, 1, 10, 7, 30, 0, 0, time.UTC)

func profileAt(day int, last *time.Time) models.Profile {
	p := models.NewProfile(start)
	p.Onboarded = true
	p.Reason = "I want more energy, focus, and clarity"
	p.CurrentDay = day
	p.LastCompletionTime = last
	p.UnlockedBadges = badges.For(day)
	return p
}

func TestApplyCompletionAdvancesDay(t *testing.T) {
	p := profileAt(1, nil)
	now := start.Add(time.Hour)

	next, err := ApplyCompletion(p, now)
	if err != nil {
		t.Fatalf("ApplyCompletion() error = %v", err)
	}
	if next.CurrentDay != 2 {
		t.Errorf("CurrentDay = %d, want 2", next.CurrentDay)
	}
	if next.LastCompletionTime == nil || !next.LastCompletionTime.Equal(now) {
		t.Errorf("LastCompletionTime = %v, want %v", next.LastCompletionTime, now)
	}
	if p.CurrentDay != 1 || p.LastCompletionTime != nil {
		t.Error("ApplyCompletion mutated its input")
	}
}

func TestApplyCompletionProperties(t *testing.T) {
	for day := 1; day <= constants.ProgramDays; day++ {
		for _, offset := range []time.Duration{0, time.Hour, 23 * time.Hour, 24 * time.Hour, 50 * time.Hour} {
			last := start
			p := profileAt(day, &last)
			now := start.Add(offset)

			next, _ := ApplyCompletion(p, now)
			if next.CurrentDay != p.CurrentDay && next.CurrentDay != p.CurrentDay+1 {
				t.Fatalf("day %d offset %v: CurrentDay jumped to %d", day, offset, next.CurrentDay)
			}
			if next.CurrentDay > constants.ProgramDays {
				t.Fatalf("day %d: CurrentDay %d exceeds program length", day, next.CurrentDay)
			}
			for _, k := range p.UnlockedBadges {
				if !badges.Contains(next.UnlockedBadges, k) {
					t.Fatalf("day %d: badge %v was removed", day, k)
				}
			}
			for _, k := range badges.For(next.CurrentDay) {
				if !badges.Contains(next.UnlockedBadges, k) {
					t.Fatalf("day %d: badge %v should be unlocked", next.CurrentDay, k)
				}
			}
		}
	}
}

func TestApplyCompletionWhileLockedIsNoop(t *testing.T) {
	last := start
	p := profileAt(10, &last)

	next, err := ApplyCompletion(p, start.Add(23*time.Hour))
	if !errors.Is(err, ErrGateLocked) {
		t.Fatalf("error = %v, want ErrGateLocked", err)
	}
	if next.CurrentDay != 10 {
		t.Errorf("CurrentDay = %d, want 10", next.CurrentDay)
	}
	if !next.LastCompletionTime.Equal(start) {
		t.Errorf("LastCompletionTime changed to %v", next.LastCompletionTime)
	}
}

// Day 107 -> 108 unlocks the final badge.
func TestApplyCompletionReachesFinalDay(t *testing.T) {
	last := start
	p := profileAt(107, &last)

	next, err := ApplyCompletion(p, start.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("ApplyCompletion() error = %v", err)
	}
	if next.CurrentDay != 108 {
		t.Errorf("CurrentDay = %d, want 108", next.CurrentDay)
	}
	if !badges.Contains(next.UnlockedBadges, models.BadgeMaster) {
		t.Errorf("UnlockedBadges = %v, want master", next.UnlockedBadges)
	}
}

// Completing on day 108 only restarts the gate.
func TestApplyCompletionPlateau(t *testing.T) {
	last := start
	p := profileAt(108, &last)
	now := start.Add(30 * time.Hour)

	next, err := ApplyCompletion(p, now)
	if err != nil {
		t.Fatalf("ApplyCompletion() error = %v", err)
	}
	if next.CurrentDay != 108 {
		t.Errorf("CurrentDay = %d, want 108", next.CurrentDay)
	}
	if !next.LastCompletionTime.Equal(now) {
		t.Errorf("LastCompletionTime = %v, want %v", next.LastCompletionTime, now)
	}
}

func TestApplyCompletionWarriorUnlock(t *testing.T) {
	p := profileAt(6, nil)
	next, err := ApplyCompletion(p, start)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.UnlockedBadges) != 1 || next.UnlockedBadges[0] != models.BadgeWarrior {
		t.Errorf("UnlockedBadges = %v, want [warrior]", next.UnlockedBadges)
	}
}

func TestRecordJournalOverwritesSameDay(t *testing.T) {
	last := start
	p := profileAt(5, &last)
	now := start.Add(time.Hour)

	first := NewEntry(p, "Stayed strong through the evening", "", now)
	p, err := RecordJournal(p, first, now)
	if err != nil {
		t.Fatalf("first RecordJournal() error = %v", err)
	}

	later := now.Add(2 * time.Hour)
	second := NewEntry(p, "  Meditated twice  ", "late-night scrolling", later)
	p, err = RecordJournal(p, second, later)
	if err != nil {
		t.Fatalf("second RecordJournal() error = %v", err)
	}

	if len(p.JournalEntries) != 1 {
		t.Fatalf("JournalEntries has %d entries, want 1", len(p.JournalEntries))
	}
	got := p.JournalEntries[5]
	if got.DailyAnswer != "Meditated twice" {
		t.Errorf("DailyAnswer = %q", got.DailyAnswer)
	}
	if got.Temptations != "late-night scrolling" {
		t.Errorf("Temptations = %q", got.Temptations)
	}
	if got.WhyStarted != p.Reason {
		t.Errorf("WhyStarted = %q, want onboarding reason", got.WhyStarted)
	}
	if !got.Date.Equal(later) {
		t.Errorf("Date = %v, want %v", got.Date, later)
	}
}

func TestRecordJournalGuards(t *testing.T) {
	t.Run("closed before completing the day", func(t *testing.T) {
		p := profileAt(3, nil)
		_, err := RecordJournal(p, NewEntry(p, "hello", "", start), start)
		if !errors.Is(err, ErrJournalClosed) {
			t.Errorf("error = %v, want ErrJournalClosed", err)
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		last := start
		p := profileAt(3, &last)
		_, err := RecordJournal(p, NewEntry(p, "   ", "", start), start)
		if !errors.Is(err, ErrEmptyJournal) {
			t.Errorf("error = %v, want ErrEmptyJournal", err)
		}
	})
}

func TestOnboardAndMarkPaid(t *testing.T) {
	p := models.NewProfile(start)
	later := start.Add(48 * time.Hour)

	p = Onboard(p, 24, "I want to transform myself in these 108 days", later)
	if !p.Onboarded || p.Age != 24 || !p.StartDate.Equal(later) {
		t.Errorf("Onboard() = %+v", p)
	}

	p = Onboard(p, 25, "I want more energy, focus, and clarity", later)
	if p.Age != 25 || p.Reason != "I want more energy, focus, and clarity" {
		t.Errorf("re-onboarding should overwrite answers, got %+v", p)
	}

	p = MarkPaid(p)
	if !p.Paid {
		t.Error("MarkPaid() did not set Paid")
	}
}
