// Package badges derives earned badges and progress toward locked ones from
// the current day.
package badges

import (
	"sort"

	"github.com/julianstephens/brahmapath/internal/models"
)

// For returns every badge whose threshold day has been reached.
func For(day int) []models.BadgeKind {
	out := []models.BadgeKind{}
	for _, b := range models.BadgeCatalog {
		if day >= b.DayRequired {
			out = append(out, b.Kind)
		}
	}
	return out
}

// Progress is the display percentage toward b. It never touches the
// unlocked set.
func Progress(day int, b models.BadgeKind) float64 {
	req := b.Info().DayRequired
	if req <= 0 {
		return 0
	}
	ratio := float64(day) / float64(req)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio * 100
}

func Contains(set []models.BadgeKind, k models.BadgeKind) bool {
	for _, b := range set {
		if b == k {
			return true
		}
	}
	return false
}

// Union merges sets, dropping invalid kinds and duplicates. The result is
// ordered by threshold.
func Union(sets ...[]models.BadgeKind) []models.BadgeKind {
	seen := make(map[models.BadgeKind]bool)
	out := []models.BadgeKind{}
	for _, set := range sets {
		for _, k := range set {
			if !k.Valid() || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Info().DayRequired < out[j].Info().DayRequired
	})
	return out
}

// ParseIDs converts wire ids, silently dropping unknown ones. The second
// return value lists what was dropped so callers can log it.
func ParseIDs(ids []string) ([]models.BadgeKind, []string) {
	var kinds []models.BadgeKind
	var unknown []string
	for _, id := range ids {
		k, err := models.ParseBadgeKind(id)
		if err != nil {
			unknown = append(unknown, id)
			continue
		}
		kinds = append(kinds, k)
	}
	return Union(kinds), unknown
}

func IDs(set []models.BadgeKind) []string {
	out := make([]string, 0, len(set))
	for _, k := range set {
		out = append(out, k.ID())
	}
	return out
}

// MilestonesReached lists milestones at or below day.
func MilestonesReached(day int) []models.Milestone {
	var out []models.Milestone
	for _, m := range models.MilestoneCatalog {
		if day >= m.Day {
			out = append(out, m)
		}
	}
	return out
}

// NextMilestone returns the first milestone after day, if any.
func NextMilestone(day int) (models.Milestone, bool) {
	for _, m := range models.MilestoneCatalog {
		if m.Day > day {
			return m, true
		}
	}
	return models.Milestone{}, false
}
