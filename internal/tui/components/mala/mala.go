// Package mala draws the 108-bead progress string.
package mala

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/models"
)

const perRow = 12

const (
	beadDone    = "●"
	beadPending = "○"
	markerDone  = "◉"
	markerOpen  = "◎"
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("172"))
	markerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("130")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// Bead is the state of one bead, 1-based.
type Bead struct {
	Index   int
	Done    bool
	Marker  bool
	Current bool
}

// Beads returns the string for progress (the current day). Beads up to
// and including progress are done; the last done bead is current.
func Beads(progress int) []Bead {
	beads := make([]Bead, constants.ProgramDays)
	for i := range beads {
		n := i + 1
		beads[i] = Bead{
			Index:   n,
			Done:    i < progress,
			Marker:  slices.Contains(models.MalaMarkers, n),
			Current: i == progress-1,
		}
	}
	return beads
}

func (b Bead) glyph() string {
	switch {
	case b.Marker && b.Done:
		return markerDone
	case b.Marker:
		return markerOpen
	case b.Done:
		return beadDone
	default:
		return beadPending
	}
}

func (b Bead) render() string {
	g := b.glyph()
	switch {
	case b.Current:
		return currentStyle.Render(g)
	case b.Marker && b.Done:
		return markerStyle.Render(g)
	case b.Done:
		return doneStyle.Render(g)
	default:
		return pendingStyle.Render(g)
	}
}

// Render lays the beads out in rows of twelve.
func Render(progress int) string {
	var b strings.Builder
	for i, bead := range Beads(progress) {
		if i > 0 && i%perRow == 0 {
			b.WriteString("\n")
		} else if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(bead.render())
	}
	return b.String()
}
