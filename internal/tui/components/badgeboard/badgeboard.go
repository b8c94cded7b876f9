// Package badgeboard lists the badge catalog with unlock progress.
package badgeboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/brahmapath/internal/badges"
	"github.com/julianstephens/brahmapath/internal/models"
)

var (
	unlockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("172")).
			Bold(true)
	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			PaddingLeft(3)
)

type Model struct {
	bar      progress.Model
	day      int
	unlocked []models.BadgeKind
}

func New(width int) Model {
	bar := progress.New(progress.WithGradient("#F59E0B", "#B45309"))
	m := Model{bar: bar}
	m.SetWidth(width)
	return m
}

func (m *Model) SetWidth(width int) {
	w := width - 10
	if w < 10 {
		w = 10
	}
	if w > 40 {
		w = 40
	}
	m.bar.Width = w
}

func (m *Model) SetProfile(p models.Profile) {
	m.day = p.CurrentDay
	m.unlocked = p.UnlockedBadges
}

func (m Model) View() string {
	var b strings.Builder
	for _, badge := range models.BadgeCatalog {
		if badges.Contains(m.unlocked, badge.Kind) {
			b.WriteString(unlockedStyle.Render(fmt.Sprintf("%s %s", badge.Kind.Glyph(), badge.Name)))
			b.WriteString("  unlocked\n")
			b.WriteString(descStyle.Render(badge.Description))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(lockedStyle.Render(fmt.Sprintf("%s %s  day %d", badge.Kind.Glyph(), badge.Name, badge.DayRequired)))
		b.WriteString("\n   ")
		b.WriteString(m.bar.ViewAs(badges.Progress(m.day, badge.Kind) / 100))
		b.WriteString("\n")
		b.WriteString(descStyle.Render(badge.Description))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
