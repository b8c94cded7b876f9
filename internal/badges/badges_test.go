package badges

import (
	"math"
	"testing"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/models"
)

func TestForThresholds(t *testing.T) {
	tests := []struct {
		day  int
		want []models.BadgeKind
	}{
		{day: 1, want: []models.BadgeKind{}},
		{day: 6, want: []models.BadgeKind{}},
		{day: 7, want: []models.BadgeKind{models.BadgeWarrior}},
		{day: 37, want: []models.BadgeKind{models.BadgeWarrior, models.BadgeElite}},
		{day: 78, want: []models.BadgeKind{models.BadgeWarrior, models.BadgeElite}},
		{day: 79, want: []models.BadgeKind{models.BadgeWarrior, models.BadgeElite, models.BadgeChampion}},
		{day: 108, want: []models.BadgeKind{models.BadgeWarrior, models.BadgeElite, models.BadgeChampion, models.BadgeMaster}},
	}

	for _, tt := range tests {
		got := For(tt.day)
		if len(got) != len(tt.want) {
			t.Fatalf("For(%d) = %v, want %v", tt.day, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("For(%d)[%d] = %v, want %v", tt.day, i, got[i], tt.want[i])
			}
		}
	}
}

func TestForIsMonotonic(t *testing.T) {
	for day := 1; day < constants.ProgramDays; day++ {
		cur, next := For(day), For(day+1)
		for _, k := range cur {
			if !Contains(next, k) {
				t.Fatalf("badge %v present on day %d but missing on day %d", k, day, day+1)
			}
		}
	}
}

func TestForFinalDayIsFullCatalog(t *testing.T) {
	got := For(constants.ProgramDays)
	if len(got) != len(models.BadgeCatalog) {
		t.Fatalf("For(108) has %d badges, catalog has %d", len(got), len(models.BadgeCatalog))
	}
	for _, b := range models.BadgeCatalog {
		if !Contains(got, b.Kind) {
			t.Errorf("For(108) missing %v", b.Kind)
		}
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name string
		day  int
		kind models.BadgeKind
		want float64
	}{
		{name: "halfway to elite", day: 18, kind: models.BadgeElite, want: 18.0 / 37.0 * 100},
		{name: "exactly warrior", day: 7, kind: models.BadgeWarrior, want: 100},
		{name: "past warrior is capped", day: 50, kind: models.BadgeWarrior, want: 100},
		{name: "unknown kind", day: 50, kind: models.BadgeKind(99), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.day, tt.kind); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	got := Union(
		[]models.BadgeKind{models.BadgeMaster, models.BadgeWarrior},
		[]models.BadgeKind{models.BadgeWarrior, models.BadgeKind(42), models.BadgeElite},
	)
	want := []models.BadgeKind{models.BadgeWarrior, models.BadgeElite, models.BadgeMaster}
	if len(got) != len(want) {
		t.Fatalf("Union() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Union()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseIDs(t *testing.T) {
	kinds, unknown := ParseIDs([]string{"elite", "shield", "warrior", "elite"})
	if len(kinds) != 2 || kinds[0] != models.BadgeWarrior || kinds[1] != models.BadgeElite {
		t.Errorf("kinds = %v", kinds)
	}
	if len(unknown) != 1 || unknown[0] != "shield" {
		t.Errorf("unknown = %v", unknown)
	}
	if ids := IDs(kinds); ids[0] != "warrior" || ids[1] != "elite" {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestMilestones(t *testing.T) {
	if got := MilestonesReached(6); len(got) != 0 {
		t.Errorf("MilestonesReached(6) = %v", got)
	}
	if got := MilestonesReached(40); len(got) != 2 {
		t.Errorf("MilestonesReached(40) has %d entries, want 2", len(got))
	}
	next, ok := NextMilestone(40)
	if !ok || next.Day != 79 {
		t.Errorf("NextMilestone(40) = %+v, %v", next, ok)
	}
	if _, ok := NextMilestone(108); ok {
		t.Error("no milestone should follow day 108")
	}
}
