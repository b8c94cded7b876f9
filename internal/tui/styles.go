package tui

import "github.com/charmbracelet/lipgloss"

var (
	saffron = lipgloss.Color("208")
	amber   = lipgloss.Color("172")
	stone   = lipgloss.Color("240")

	activeTabStyle = lipgloss.NewStyle().
			Foreground(saffron).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(stone).
				Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(saffron).
			Bold(true).
			Padding(1, 2)

	omStyle = lipgloss.NewStyle().
		Foreground(saffron).
		Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(stone)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 2)

	dayStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	verseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("137")).
			Italic(true)
)
