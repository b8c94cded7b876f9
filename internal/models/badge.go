package models

import "fmt"

// BadgeKind is the closed set of badges a user can unlock.
type BadgeKind int

const (
	BadgeWarrior BadgeKind = iota + 1
	BadgeElite
	BadgeChampion
	BadgeMaster
)

// Badge is a read-only catalog entry.
type Badge struct {
	Kind        BadgeKind
	Name        string
	DayRequired int
	Description string
}

// BadgeCatalog is ordered by DayRequired.
var BadgeCatalog = []Badge{
	{Kind: BadgeWarrior, Name: "Warrior", DayRequired: 7, Description: "Complete 7 days of discipline"},
	{Kind: BadgeElite, Name: "Elite", DayRequired: 37, Description: "Achieve 37 days of mastery"},
	{Kind: BadgeChampion, Name: "Champion", DayRequired: 79, Description: "Reach 79 days of transformation"},
	{Kind: BadgeMaster, Name: "Master", DayRequired: 108, Description: "Complete the sacred 108-day path"},
}

var badgeIDs = map[BadgeKind]string{
	BadgeWarrior:  "warrior",
	BadgeElite:    "elite",
	BadgeChampion: "champion",
	BadgeMaster:   "master",
}

var badgeGlyphs = map[BadgeKind]string{
	BadgeWarrior:  "🛡",
	BadgeElite:    "👑",
	BadgeChampion: "🔥",
	BadgeMaster:   "🏆",
}

// ID is the wire identifier stored in unlocked badge lists.
func (k BadgeKind) ID() string {
	return badgeIDs[k]
}

func (k BadgeKind) Glyph() string {
	return badgeGlyphs[k]
}

func (k BadgeKind) String() string {
	return k.ID()
}

// Info returns the catalog entry for k.
func (k BadgeKind) Info() Badge {
	for _, b := range BadgeCatalog {
		if b.Kind == k {
			return b
		}
	}
	return Badge{}
}

func (k BadgeKind) Valid() bool {
	_, ok := badgeIDs[k]
	return ok
}

// ParseBadgeKind resolves a wire identifier. Unknown ids are rejected.
func ParseBadgeKind(id string) (BadgeKind, error) {
	for k, v := range badgeIDs {
		if v == id {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown badge id %q", id)
}

func (k BadgeKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid badge kind %d", int(k))
	}
	return []byte(k.ID()), nil
}

func (k *BadgeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseBadgeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
