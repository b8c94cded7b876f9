package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/models"
	"github.com/julianstephens/brahmapath/internal/tui/components/mala"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case flow.Loading:
		content = m.viewLoading()
	case flow.Landing:
		content = m.viewLanding()
	case flow.Onboarding:
		content = m.viewForm("Begin your sadhana")
	case flow.Commitment:
		content = m.viewCommitment()
	case flow.Auth:
		content = m.viewAuth()
	case flow.Payment:
		content = m.viewPayment()
	case flow.Dashboard:
		content = m.viewDashboard()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewStatus() string {
	switch {
	case m.busy:
		return m.spinner.View() + " " + subtleStyle.Render("please wait...")
	case m.err != "":
		return errorStyle.Render(m.err)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m Model) viewLoading() string {
	return titleStyle.Render(omStyle.Render("ॐ") + " " + m.spinner.View())
}

func (m Model) viewLanding() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ॐ  BrahmaPath"))
	b.WriteString("\n")
	b.WriteString(dayStyle.Render(fmt.Sprintf("The %d-day path of Brahmacharya", constants.ProgramDays)))
	b.WriteString("\n\n")
	b.WriteString("Reclaim your energy. Master your mind. Walk with Krishna.\n\n")
	b.WriteString(subtleStyle.Render("Press enter to begin your journey."))
	return b.String()
}

func (m Model) viewForm(title string) string {
	if m.form == nil {
		return titleStyle.Render(title)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), m.form.View())
}

func (m Model) viewCommitment() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("What these 108 days will give you"))
	b.WriteString("\n")
	for _, p := range models.Pillars {
		var pts strings.Builder
		pts.WriteString(dayStyle.Render(p.Title) + "  " + subtleStyle.Render(p.Hindi))
		for _, pt := range p.Points {
			pts.WriteString("\n  • " + pt)
		}
		b.WriteString(cardStyle.Render(pts.String()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Press enter to take the vow."))
	return b.String()
}

func (m Model) viewAuth() string {
	title := "Create your account"
	if m.authForm != nil && m.authForm.Mode == AuthSignIn {
		title = "Welcome back"
	}
	content := m.viewForm(title)
	if _, ok := m.app.Session(); ok {
		content += "\n" + subtleStyle.Render("Already signed in. Press ctrl+p to continue to payment.")
	}
	return content
}

func (m Model) viewPayment() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Seal your commitment"))
	b.WriteString("\n")
	body := fmt.Sprintf("A one-time offering of %s unlocks the full %d-day path.\nContributions support Gau-Seva.", constants.ProgramFee, constants.ProgramDays)
	b.WriteString(cardStyle.Render(body))
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("Press enter to pay, esc to go back."))
	return b.String()
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := TabHome; t < tabCount; t++ {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewDashboard() string {
	var content string
	switch m.tab {
	case TabHome:
		content = m.viewHome()
	case TabProgress:
		content = m.viewProgress()
	case TabJournal:
		content = m.viewJournal()
	case TabWisdom:
		content = m.viewWisdom()
	case TabBadges:
		content = m.board.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), "", content)
}

func (m Model) viewHome() string {
	p := m.app.Profile()
	if m.form != nil {
		return m.viewForm("Today's sadhana")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Namaste, " + p.DisplayName()))
	b.WriteString("\n")
	b.WriteString(dayStyle.Render(fmt.Sprintf("Day %d of %d", p.CurrentDay, constants.ProgramDays)))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("   %d days remaining · %d%% complete", p.DaysRemaining(), p.PercentComplete())))
	b.WriteString("\n\n")

	if st := m.app.Gate(); st.Locked {
		b.WriteString(lockedStyle.Render("Today's sadhana is complete. Next unlocks in " + st.Label))
	} else {
		b.WriteString(noticeStyle.Render("Today's sadhana awaits. Press c when your video proof is recorded."))
	}
	b.WriteString("\n\n")

	c := m.app.Content()
	b.WriteString(cardStyle.Render(fmt.Sprintf("%q\n\n%s\n%s  (Gita %s)",
		c.Quote, verseStyle.Render(c.Verse.Sanskrit), c.Verse.Translation, c.Verse.Ref)))
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render(models.BreathingPractice))
	return b.String()
}

func (m Model) viewProgress() string {
	p := m.app.Profile()
	var b strings.Builder
	b.WriteString(mala.Render(p.CurrentDay))
	b.WriteString("\n\n")
	for _, ms := range models.MilestoneCatalog {
		mark := "○"
		if p.CurrentDay >= ms.Day {
			mark = "●"
		}
		b.WriteString(fmt.Sprintf("%s %s  %s\n", mark, dayStyle.Render(fmt.Sprintf("Day %d: %s", ms.Day, ms.Title)), subtleStyle.Render(ms.Subtitle)))
	}
	if next, ok := badges.NextMilestone(p.CurrentDay); ok {
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render(fmt.Sprintf("%d days until %s", next.Day-p.CurrentDay, next.Title)))
	}
	return b.String()
}

func (m Model) viewJournal() string {
	p := m.app.Profile()
	var b strings.Builder

	if m.app.JournalOpen() {
		b.WriteString(dayStyle.Render(fmt.Sprintf("Reflection for day %d", p.CurrentDay)))
		b.WriteString("\n")
		b.WriteString(m.journal.View())
		b.WriteString("\n")
		b.WriteString(m.temptations.View())
		b.WriteString("\n")
		if m.focus == focusNone {
			b.WriteString(subtleStyle.Render("Press w to write, ctrl+s to save."))
		}
	} else {
		b.WriteString(lockedStyle.Render("Complete today's sadhana to unlock the journal."))
	}
	if m.reflectBusy {
		b.WriteString("\n\n" + m.spinner.View() + " " + subtleStyle.Render("reflecting..."))
	} else if m.reflection != "" {
		b.WriteString("\n\n")
		b.WriteString(cardStyle.Render(verseStyle.Render(m.reflection)))
	}

	days := make([]int, 0, len(p.JournalEntries))
	for day := range p.JournalEntries {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))
	if len(days) > 0 {
		b.WriteString("\n\n")
	}
	for _, day := range days {
		e := p.JournalEntries[day]
		b.WriteString(dayStyle.Render(fmt.Sprintf("Day %d", day)))
		b.WriteString(subtleStyle.Render("  " + humanize.Time(e.Date)))
		b.WriteString("\n  " + e.DailyAnswer + "\n")
		if e.Temptations != "" {
			b.WriteString(subtleStyle.Render("  Temptations: "+e.Temptations) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewWisdom() string {
	var b strings.Builder
	b.WriteString(dayStyle.Render("Ask for guidance"))
	b.WriteString("\n")
	b.WriteString(m.ask.View())
	b.WriteString("\n")
	if !m.app.AdviceConfigured() {
		b.WriteString(subtleStyle.Render("No guide is configured; answers are fixed reminders."))
		b.WriteString("\n")
	}
	if m.guidanceBusy {
		b.WriteString("\n" + m.spinner.View() + " " + subtleStyle.Render("seeking guidance..."))
	} else if m.guidance != "" {
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(verseStyle.Render(m.guidance)))
	}
	return b.String()
}
