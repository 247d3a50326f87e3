// Package ui renders a one-button terminal view over the services repository.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/internal/observable"
)

// Trigger starts a fetch; results arrive through the observed slot.
type Trigger func()

// OutcomeMsg carries a slot update into the bubbletea loop.
type OutcomeMsg struct {
	Outcome domain.Outcome
}

type keyMap struct {
	Fetch key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Fetch: key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter", "fetch services")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	buttonStyle  = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12"))
	messageStyle = lipgloss.NewStyle().MarginTop(1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
)

// Model is the bubbletea model: a button, a loading spinner and the last message.
type Model struct {
	trigger Trigger
	keys    keyMap
	spinner spinner.Model
	loading bool
	message string
	fetches int
}

// NewModel builds a Model that calls trigger on every button press.
func NewModel(trigger Trigger) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		trigger: trigger,
		keys:    defaultKeyMap(),
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model. Presses while loading issue further fetches;
// whichever completes last is shown.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Fetch):
			m.fetches++
			if m.trigger != nil {
				m.trigger()
			}
			if !m.loading {
				m.loading = true
				return m, m.spinner.Tick
			}
			return m, nil
		}
	case OutcomeMsg:
		m.loading = false
		m.message = msg.Outcome.Message()
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Services"))
	b.WriteString("\n")
	b.WriteString(buttonStyle.Render("Fetch services"))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(messageStyle.Render(m.spinner.View() + " Loading..."))
	case m.message != "":
		b.WriteString(messageStyle.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.keys.Fetch.Help().Key + " " + m.keys.Fetch.Help().Desc + " • " +
		m.keys.Quit.Help().Key + " " + m.keys.Quit.Help().Desc))
	b.WriteString("\n")
	return b.String()
}

// Loading reports whether a fetch is pending display.
func (m Model) Loading() bool { return m.loading }

// Message returns the last displayed message.
func (m Model) Message() string { return m.message }

// Run starts the interactive program. Slot updates are forwarded into the
// program until it exits.
func Run(ctx context.Context, slot *observable.Slot[domain.Outcome], trigger Trigger) error {
	p := tea.NewProgram(NewModel(trigger), tea.WithContext(ctx))
	cancel := slot.Observe(func(o domain.Outcome) {
		p.Send(OutcomeMsg{Outcome: o})
	})
	defer cancel()

	_, err := p.Run()
	return err
}
