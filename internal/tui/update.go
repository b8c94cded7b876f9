package tui

import (
	stderrors "errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/errors"
	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/reconcile"
	"github.com/julianstephens/brahmapath/internal/remote"
)

type resolvedMsg struct {
	res reconcile.Resolution
	err error
}

type tickMsg struct {
	gen int
	at  time.Time
}

type authDoneMsg struct{ err error }

type logoutDoneMsg struct{ err error }

type guidanceMsg struct{ text string }

type reflectionMsg struct{ text string }

type sessionEndedMsg struct{}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		res, err := m.app.Start(m.ctx)
		return resolvedMsg{res: res, err: err}
	}
}

func (m Model) waitSessionEnded() tea.Cmd {
	ended := m.app.SessionEnded()
	return func() tea.Msg {
		select {
		case <-ended:
			return sessionEndedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func tick(gen int) tea.Cmd {
	return tea.Tick(constants.GateTickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.journal.SetWidth(min(msg.Width-4, 80))
		m.board.SetWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		if m.screen != flow.Loading && !m.waiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resolvedMsg:
		if msg.err != nil {
			logger.Error("startup failed", "error", msg.err)
			m.err = errors.UserMessage(msg.err)
		}
		return m, m.sync()

	case tickMsg:
		if msg.gen != m.tickGen || m.screen != flow.Dashboard {
			return m, nil
		}
		return m, tick(m.tickGen)

	case sessionEndedMsg:
		m.app.EndSession()
		cmd := m.sync()
		return m, tea.Batch(cmd, m.waitSessionEnded())

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, m.newAuthForm()
		}
		return m, m.sync()

	case logoutDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
		}
		return m, m.sync()

	case guidanceMsg:
		if !m.guidanceBusy {
			return m, nil
		}
		m.guidanceBusy = false
		m.guidance = msg.text
		return m, nil

	case reflectionMsg:
		if !m.reflectBusy {
			return m, nil
		}
		m.reflectBusy = false
		m.reflection = msg.text
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.focus != focusNone {
		return m.updateInput(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || m.busy {
		return m, nil
	}
	return m.handleKey(km)
}

// sync moves the view to the app's current screen, preparing the forms and
// the countdown for the screen being entered.
func (m *Model) sync() tea.Cmd {
	next := m.app.Screen()
	if next == m.screen {
		return nil
	}
	prev := m.screen
	m.screen = next
	m.form = nil
	m.focus = focusNone
	if prev == flow.Dashboard {
		m.tickGen++
	}

	switch next {
	case flow.Onboarding:
		return m.newOnboardingForm()
	case flow.Auth:
		return m.newAuthForm()
	case flow.Dashboard:
		m.tab = TabHome
		m.tickGen++
		m.board.SetProfile(m.app.Profile())
		return tick(m.tickGen)
	case flow.Landing:
		m.guidance, m.reflection = "", ""
		m.guidanceBusy, m.reflectBusy = false, false
		m.journal.Reset()
		m.temptations.Reset()
		m.ask.Reset()
	}
	return nil
}

func (m Model) waiting() bool {
	return m.busy || m.guidanceBusy || m.reflectBusy
}

func (m *Model) setError(err error) {
	m.notice = ""
	if stderrors.Is(err, remote.ErrEmailNotConfirmed) {
		m.err = ""
		m.notice = errors.UserMessage(err)
		return
	}
	m.err = errors.UserMessage(err)
}

func (m *Model) clearStatus() {
	m.err = ""
	m.notice = ""
}

func (m *Model) newOnboardingForm() tea.Cmd {
	p := m.app.Profile()
	m.onboardingForm = &OnboardingFormModel{Reason: p.Reason}
	m.form = NewOnboardingForm(m.onboardingForm)
	return m.form.Init()
}

func (m *Model) newAuthForm() tea.Cmd {
	fm := &AuthFormModel{Mode: AuthSignUp}
	if m.authForm != nil {
		fm.Mode = m.authForm.Mode
		fm.Name = m.authForm.Name
		fm.Email = m.authForm.Email
	}
	if fm.Email == "" {
		fm.Email = m.app.Profile().Email
	}
	m.authForm = fm
	m.form = NewAuthForm(fm)
	return m.form.Init()
}

func (m *Model) newProofForm() tea.Cmd {
	m.proofForm = &ProofFormModel{}
	m.form = NewProofForm(m.proofForm)
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if m.screen == flow.Auth && key.Matches(km, m.keys.Payment) {
			if err := m.app.ShowPayment(); err != nil {
				m.setError(err)
				return m, nil
			}
			m.clearStatus()
			return m, m.sync()
		}
		if m.screen == flow.Dashboard && key.Matches(km, m.keys.Back) {
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.completeForm()
	case huh.StateAborted:
		switch m.screen {
		case flow.Onboarding:
			return m, m.newOnboardingForm()
		case flow.Auth:
			return m, m.newAuthForm()
		default:
			m.form = nil
		}
	}
	return m, cmd
}

func (m Model) completeForm() (tea.Model, tea.Cmd) {
	m.clearStatus()
	switch m.screen {
	case flow.Onboarding:
		fm := m.onboardingForm
		if err := m.app.CompleteOnboarding(fm.AgeValue(), fm.Reason); err != nil {
			m.setError(err)
			return m, m.newOnboardingForm()
		}
		return m, m.sync()

	case flow.Auth:
		m.form = nil
		m.busy = true
		fm := *m.authForm
		a, ctx := m.app, m.ctx
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			if fm.Mode == AuthSignUp {
				return authDoneMsg{err: a.SignUp(ctx, fm.Name, fm.Email, fm.Password)}
			}
			return authDoneMsg{err: a.SignIn(ctx, fm.Email, fm.Password)}
		})

	case flow.Dashboard:
		m.form = nil
		p, err := m.app.CompleteDay(m.proofForm.Path)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.board.SetProfile(p)
		m.notice = "Sadhana complete. Your journal is open for today."
	}
	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Back):
			m.blur()
			return m, nil
		case m.focus == focusAsk && km.Type == tea.KeyEnter:
			return m.askGuidance()
		case m.focus != focusAsk && key.Matches(km, m.keys.Tab):
			if m.focus == focusJournal {
				m.focus = focusTemptations
				m.journal.Blur()
				return m, m.temptations.Focus()
			}
			m.focus = focusJournal
			m.temptations.Blur()
			return m, m.journal.Focus()
		case m.focus != focusAsk && key.Matches(km, m.keys.Submit):
			return m.submitJournal()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusJournal:
		m.journal, cmd = m.journal.Update(msg)
	case focusTemptations:
		m.temptations, cmd = m.temptations.Update(msg)
	case focusAsk:
		m.ask, cmd = m.ask.Update(msg)
	}
	return m, cmd
}

func (m *Model) blur() {
	m.focus = focusNone
	m.journal.Blur()
	m.temptations.Blur()
	m.ask.Blur()
}

func (m Model) submitJournal() (tea.Model, tea.Cmd) {
	m.clearStatus()
	entry, err := m.app.SubmitJournal(m.journal.Value(), m.temptations.Value())
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.blur()
	m.journal.Reset()
	m.temptations.Reset()
	m.notice = "Reflection saved."
	if m.reflectBusy {
		return m, nil
	}
	m.reflection = ""
	m.reflectBusy = true
	a, ctx := m.app, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return reflectionMsg{text: a.Reflect(ctx, entry.DailyAnswer)}
	})
}

func (m Model) askGuidance() (tea.Model, tea.Cmd) {
	topic := m.ask.Value()
	if topic == "" {
		return m, nil
	}
	if m.guidanceBusy {
		m.notice = "Still waiting on the last answer."
		return m, nil
	}
	m.blur()
	m.guidanceBusy = true
	m.guidance = ""
	a, ctx := m.app, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return guidanceMsg{text: a.Guidance(ctx, topic)}
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.screen {
	case flow.Landing:
		if key.Matches(msg, m.keys.Enter) {
			m.clearStatus()
			if err := m.app.Begin(); err != nil {
				m.setError(err)
				return m, nil
			}
			return m, m.sync()
		}

	case flow.Commitment:
		if key.Matches(msg, m.keys.Enter) {
			if err := m.app.Commit(); err != nil {
				m.setError(err)
				return m, nil
			}
			return m, m.sync()
		}

	case flow.Payment:
		switch {
		case key.Matches(msg, m.keys.Enter):
			m.clearStatus()
			if err := m.app.ConfirmPayment(); err != nil {
				m.setError(err)
				return m, nil
			}
			return m, m.sync()
		case key.Matches(msg, m.keys.Back):
			if err := m.app.BackToAuth(); err != nil {
				m.setError(err)
				return m, nil
			}
			return m, m.sync()
		}

	case flow.Dashboard:
		return m.handleDashboardKey(msg)
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.tab = (m.tab + 1) % tabCount
		m.clearStatus()
	case key.Matches(msg, m.keys.ShiftTab):
		m.tab = (m.tab - 1 + tabCount) % tabCount
		m.clearStatus()
	case key.Matches(msg, m.keys.Logout):
		m.busy = true
		a, ctx := m.app, m.ctx
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return logoutDoneMsg{err: a.Logout(ctx)}
		})
	case m.tab == TabHome && key.Matches(msg, m.keys.Complete):
		if st := m.app.Gate(); st.Locked {
			m.err = "Next sadhana unlocks in " + st.Label + "."
			return m, nil
		}
		m.clearStatus()
		return m, m.newProofForm()
	case m.tab == TabJournal && key.Matches(msg, m.keys.Write):
		if !m.app.JournalOpen() {
			m.err = "Complete today's sadhana to unlock the journal."
			return m, nil
		}
		m.clearStatus()
		m.focus = focusJournal
		return m, m.journal.Focus()
	case m.tab == TabWisdom && key.Matches(msg, m.keys.Ask):
		m.focus = focusAsk
		return m, m.ask.Focus()
	}
	return m, nil
}
