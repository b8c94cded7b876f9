package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/julianstephens/brahmapath/internal/constants"
)

// Identity is display-only; Email is the remote join key.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// JournalEntry is one day's reflection. It is only ever replaced as a whole.
type JournalEntry struct {
	WhyStarted  string    `json:"whyStarted"`
	Temptations string    `json:"temptations"`
	DailyAnswer string    `json:"dailyAnswer"`
	Date        time.Time `json:"date"`
}

// Profile is the full program state of one user.
type Profile struct {
	Onboarded          bool                 `json:"isOnboarded"`
	Authenticated      bool                 `json:"isAuthenticated"`
	Paid               bool                 `json:"hasPaid"`
	Identity                                // name, email
	Age                int                  `json:"age"`
	Reason             string               `json:"reason"`
	StartDate          time.Time            `json:"startDate"`
	CurrentDay         int                  `json:"currentDay"`
	LastCompletionTime *time.Time           `json:"lastCompletionTime"`
	JournalEntries     map[int]JournalEntry `json:"journalEntries"`
	UnlockedBadges     []BadgeKind          `json:"unlockedBadges"`
}

// NewProfile returns the record used on a first launch with no cached state.
func NewProfile(now time.Time) Profile {
	return Profile{
		StartDate:      now,
		CurrentDay:     1,
		JournalEntries: make(map[int]JournalEntry),
		UnlockedBadges: []BadgeKind{},
	}
}

// Normalize fills nil collections and clamps CurrentDay into 1..ProgramDays.
func (p Profile) Normalize() Profile {
	if p.JournalEntries == nil {
		p.JournalEntries = make(map[int]JournalEntry)
	}
	if p.UnlockedBadges == nil {
		p.UnlockedBadges = []BadgeKind{}
	}
	if p.CurrentDay < 1 {
		p.CurrentDay = 1
	}
	if p.CurrentDay > constants.ProgramDays {
		p.CurrentDay = constants.ProgramDays
	}
	return p
}

// Clone returns a copy that shares no mutable state with p.
func (p Profile) Clone() Profile {
	c := p
	if p.LastCompletionTime != nil {
		t := *p.LastCompletionTime
		c.LastCompletionTime = &t
	}
	if p.JournalEntries != nil {
		c.JournalEntries = make(map[int]JournalEntry, len(p.JournalEntries))
		for day, e := range p.JournalEntries {
			c.JournalEntries[day] = e
		}
	}
	if p.UnlockedBadges != nil {
		c.UnlockedBadges = append([]BadgeKind{}, p.UnlockedBadges...)
	}
	return c
}

// DisplayName falls back to the local part of the email.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return "Sadhaka"
}

// DaysRemaining is never negative.
func (p Profile) DaysRemaining() int {
	if r := constants.ProgramDays - p.CurrentDay; r > 0 {
		return r
	}
	return 0
}

// PercentComplete is floor(currentDay / ProgramDays * 100).
func (p Profile) PercentComplete() int {
	return p.CurrentDay * 100 / constants.ProgramDays
}

// Encode serializes the profile into the local storage blob.
func (p Profile) Encode() ([]byte, error) {
	return json.Marshal(p.Normalize())
}

// DecodeProfile parses a local storage blob.
func DecodeProfile(data []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	return p.Normalize(), nil
}
