package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/brahmapath/internal/app"
	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/tui/components/badgeboard"
)

// Tab is a dashboard tab.
type Tab int

const (
	TabHome Tab = iota
	TabProgress
	TabJournal
	TabWisdom
	TabBadges
	tabCount
)

var tabNames = []string{"Home", "Progress", "Journal", "Wisdom", "Badges"}

func (t Tab) String() string {
	return tabNames[t]
}

// focus is the dashboard input currently receiving keys.
type focus int

const (
	focusNone focus = iota
	focusJournal
	focusTemptations
	focusAsk
)

type Model struct {
	app *app.App
	ctx context.Context

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	screen flow.Screen
	tab    Tab
	focus  focus

	form           *huh.Form
	onboardingForm *OnboardingFormModel
	authForm       *AuthFormModel
	proofForm      *ProofFormModel

	journal     textarea.Model
	temptations textinput.Model
	ask         textinput.Model
	board       badgeboard.Model

	// tickGen invalidates countdown ticks scheduled for an earlier
	// dashboard visit.
	tickGen int
	// busy covers sign-in and logout, which move the screen when they
	// finish. Advice calls only guard their own action.
	busy         bool
	guidanceBusy bool
	reflectBusy  bool

	err        string
	notice     string
	guidance   string
	reflection string

	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, a *app.App) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = omStyle

	journal := textarea.New()
	journal.Placeholder = "How did today go? What did you learn?"
	journal.ShowLineNumbers = false
	journal.SetHeight(5)

	temptations := textinput.New()
	temptations.Placeholder = "Temptations faced today (optional)"

	ask := textinput.New()
	ask.Placeholder = "Ask about anger, focus, urges, devotion..."
	ask.CharLimit = 200

	return Model{
		app:         a,
		ctx:         ctx,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		screen:      flow.Loading,
		journal:     journal,
		temptations: temptations,
		ask:         ask,
		board:       badgeboard.New(60),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.screen {
	case flow.Landing, flow.Commitment:
		keys = append(keys, m.keys.Enter)
	case flow.Auth:
		keys = append(keys, m.keys.Payment)
	case flow.Payment:
		keys = append(keys, m.keys.Enter, m.keys.Back)
	case flow.Dashboard:
		keys = append(keys, m.keys.Tab)
		switch m.tab {
		case TabHome:
			keys = append(keys, m.keys.Complete)
		case TabJournal:
			keys = append(keys, m.keys.Write, m.keys.Submit)
		case TabWisdom:
			keys = append(keys, m.keys.Ask)
		}
		keys = append(keys, m.keys.Logout)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start(), m.waitSessionEnded())
}

// Run starts the interactive client and blocks until it exits.
func Run(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(NewModel(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
