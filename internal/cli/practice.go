package cli

import (
	"errors"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/progression"
)

// CompleteCmd records today's sadhana from the command line.
type CompleteCmd struct {
	Proof string `help:"Path to today's recorded video proof." required:"" type:"path"`
}

func (c *CompleteCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if err := ctx.requireDashboard(ctx.context()); err != nil {
		return err
	}

	before := ctx.App.Profile()
	after, err := ctx.App.CompleteDay(c.Proof)
	if err != nil {
		if errors.Is(err, progression.ErrGateLocked) {
			return &userError{err: err, hint: "Unlocks in " + ctx.App.Gate().Label + "."}
		}
		return &userError{err: err}
	}

	if after.CurrentDay == before.CurrentDay {
		ctx.printf("✓ Day %d complete. The full path is walked. 🙏\n", after.CurrentDay)
	} else {
		ctx.printf("✓ Sadhana recorded. Day %d of %d begins.\n", after.CurrentDay, constants.ProgramDays)
	}
	for _, k := range after.UnlockedBadges {
		if !badges.Contains(before.UnlockedBadges, k) {
			info := k.Info()
			ctx.printf("%s Badge unlocked: %s (%s)\n", k.Glyph(), info.Name, info.Description)
		}
	}
	ctx.printf("Next sadhana unlocks in %s\n", ctx.App.Gate().Label)
	return nil
}

type JournalAddCmd struct {
	Answer      string `arg:"" help:"How did today go?"`
	Temptations string `help:"Temptations faced today." short:"t"`
	Reflect     bool   `help:"Ask for a reflection on the entry."`
}

func (c *JournalAddCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if err := ctx.requireDashboard(ctx.context()); err != nil {
		return err
	}

	entry, err := ctx.App.SubmitJournal(c.Answer, c.Temptations)
	if err != nil {
		return &userError{err: err}
	}
	ctx.printf("✓ Journal saved for day %d\n", ctx.App.Profile().CurrentDay)

	if c.Reflect {
		ctx.println()
		ctx.println(ctx.App.Reflect(ctx.context(), entry.DailyAnswer))
	}
	return nil
}

type JournalListCmd struct {
	Limit int `help:"Show at most this many entries (0 for all)." default:"0"`
}

func (c *JournalListCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if _, err := ctx.Start(ctx.context()); err != nil {
		return err
	}

	entries := ctx.App.Profile().JournalEntries
	if len(entries) == 0 {
		ctx.println("No journal entries yet.")
		return nil
	}

	days := make([]int, 0, len(entries))
	for day := range entries {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))
	if c.Limit > 0 && len(days) > c.Limit {
		days = days[:c.Limit]
	}
	for _, day := range days {
		e := entries[day]
		ctx.printf("Day %d  (%s)\n", day, humanize.Time(e.Date))
		ctx.printf("  %s\n", e.DailyAnswer)
		if e.Temptations != "" {
			ctx.printf("  Temptations: %s\n", e.Temptations)
		}
	}
	return nil
}

type AskCmd struct {
	Topic []string `arg:"" help:"What you want guidance on."`
}

func (c *AskCmd) Run(ctx *Context) error {
	defer ctx.Close()
	if _, err := ctx.Start(ctx.context()); err != nil {
		return err
	}

	topic := strings.TrimSpace(strings.Join(c.Topic, " "))
	if topic == "" {
		return errors.New("ask about something: anger, focus, urges, devotion")
	}
	ctx.println(ctx.App.Guidance(ctx.context(), topic))
	return nil
}
