package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/models"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	defer ctx.Close()
	res, err := ctx.Start(ctx.context())
	if err != nil {
		return err
	}

	p := ctx.App.Profile()
	ctx.printf("Screen:   %s (%s)\n", res.Screen, res.Source)
	if p.Email != "" {
		ctx.printf("Account:  %s <%s>\n", p.DisplayName(), p.Email)
	}
	if _, ok := ctx.App.Session(); !ok {
		ctx.println("Session:  signed out")
	}
	if res.Err != nil {
		ctx.printf("Remote:   unavailable (%v)\n", res.Err)
	}

	if res.Screen != flow.Dashboard {
		ctx.println()
		ctx.println("Next: " + nextStep(res.Screen))
		return nil
	}

	ctx.printf("Day:      %d of %d (%d remaining, %d%% complete)\n",
		p.CurrentDay, constants.ProgramDays, p.DaysRemaining(), p.PercentComplete())
	ctx.printf("Started:  %s\n", humanize.Time(p.StartDate))
	if p.LastCompletionTime != nil {
		ctx.printf("Last:     %s\n", humanize.Time(*p.LastCompletionTime))
	}
	if st := ctx.App.Gate(); st.Locked {
		ctx.printf("Today:    complete, next unlocks in %s\n", st.Label)
	} else {
		ctx.println("Today:    awaiting your sadhana")
	}
	ctx.printf("Badges:   %d of %d\n", len(p.UnlockedBadges), len(models.BadgeCatalog))
	if next, ok := badges.NextMilestone(p.CurrentDay); ok {
		ctx.printf("Next:     %s in %s\n", next.Title, pluralDays(next.Day-p.CurrentDay))
	}
	return nil
}

func pluralDays(n int) string {
	return fmt.Sprintf("%d %s", n, english.PluralWord(n, "day", ""))
}

type BadgesCmd struct{}

func (c *BadgesCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if _, err := ctx.Start(ctx.context()); err != nil {
		return err
	}

	p := ctx.App.Profile()
	for _, b := range models.BadgeCatalog {
		if badges.Contains(p.UnlockedBadges, b.Kind) {
			ctx.printf("✓ %s %-9s %s\n", b.Kind.Glyph(), b.Name, b.Description)
			continue
		}
		pct := badges.Progress(p.CurrentDay, b.Kind)
		ctx.printf("  %s %-9s %s (%.0f%%, day %d)\n", b.Kind.Glyph(), b.Name, b.Description, pct, b.DayRequired)
	}
	return nil
}

type MilestonesCmd struct{}

func (c *MilestonesCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if _, err := ctx.Start(ctx.context()); err != nil {
		return err
	}

	day := ctx.App.Profile().CurrentDay
	for _, ms := range models.MilestoneCatalog {
		mark := "○"
		if day >= ms.Day {
			mark = "●"
		}
		ctx.printf("%s Day %3d  %-20s %s\n", mark, ms.Day, ms.Title, ms.Subtitle)
	}
	if next, ok := badges.NextMilestone(day); ok {
		ctx.printf("\n%s until %s\n", pluralDays(next.Day-day), next.Title)
	}
	return nil
}
