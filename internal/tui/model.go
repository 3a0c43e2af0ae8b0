// Package tui is the interactive terminal front end. It forwards keystrokes
// to a controller.Session and renders the views the session pushes back.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/stockinfo/internal/controller"
	"github.com/dyike/stockinfo/internal/display"
)

// Messages carrying controller views into the program loop.
type (
	suggestionsMsg controller.SuggestionView
	detailMsg      controller.DetailView
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginTop(1)
)

// Model is the bubbletea model of the search screen.
type Model struct {
	session *controller.Session

	input   textinput.Model
	spinner spinner.Model

	suggestions controller.SuggestionView
	detail      controller.DetailView
	highlight   int
	tab         display.Tab

	width int
}

// New creates the model for session.
func New(session *controller.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "Search for a stock symbol or company..."
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		session:     session,
		input:       ti,
		spinner:     sp,
		suggestions: session.Suggestions(),
		detail:      session.Detail(),
		highlight:   -1,
		tab:         display.TabRatios,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 4; w > 20 {
			m.input.Width = w
		}
		return m, nil

	case suggestionsMsg:
		m.applySuggestions(controller.SuggestionView(msg))
		return m, nil

	case detailMsg:
		return m, m.applyDetail(controller.DetailView(msg))

	case spinner.TickMsg:
		if m.detail.State.Phase != controller.PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		return m, tea.Quit

	case tea.KeyEsc:
		m.session.HideSuggestions()
		m.refresh()
		return m, nil

	case tea.KeyTab:
		m.tab = m.tab.Next()
		return m, nil

	case tea.KeyUp:
		if m.listOpen() && m.highlight > 0 {
			m.highlight--
		}
		return m, nil

	case tea.KeyDown:
		if !m.suggestions.Visible {
			m.session.Focus()
			m.refresh()
			return m, nil
		}
		if m.highlight < len(m.suggestions.Items)-1 {
			m.highlight++
		}
		return m, nil

	case tea.KeyEnter:
		return m, m.enter()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		upper := strings.ToUpper(value)
		if upper != value {
			m.input.SetValue(upper)
		}
		m.session.Edit(upper)
		m.highlight = -1
		m.refresh()
	}
	return m, cmd
}

// enter picks the highlighted suggestion when the list is open, otherwise
// it submits the typed query.
func (m *Model) enter() tea.Cmd {
	if m.listOpen() && m.highlight >= 0 && m.highlight < len(m.suggestions.Items) {
		sel := m.suggestions.Items[m.highlight]
		if !m.session.Pick(sel) {
			return nil
		}
	} else if !m.session.Submit() {
		return nil
	}

	m.input.SetValue(m.session.Query())
	m.input.CursorEnd()
	m.highlight = -1
	m.refresh()
	return m.spinner.Tick
}

func (m *Model) listOpen() bool {
	return m.suggestions.Visible && len(m.suggestions.Items) > 0
}

// refresh pulls the current views after a synchronous session call.
func (m *Model) refresh() {
	m.applySuggestions(m.session.Suggestions())
	m.applyDetail(m.session.Detail())
}

func (m *Model) applySuggestions(v controller.SuggestionView) {
	if v.Version < m.suggestions.Version {
		return
	}
	if v.Version > m.suggestions.Version {
		m.highlight = -1
	}
	m.suggestions = v
}

func (m *Model) applyDetail(v controller.DetailView) tea.Cmd {
	if v.Version <= m.detail.Version {
		return nil
	}
	wasLoading := m.detail.State.Phase == controller.PhaseLoading
	m.detail = v
	if v.State.Phase == controller.PhaseLoading && !wasLoading {
		return m.spinner.Tick
	}
	return nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Stock Info"))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if list := display.RenderSuggestions(m.suggestions, m.highlight); list != "" {
		b.WriteString(list)
		b.WriteByte('\n')
	}

	state := m.detail.State
	if state.Phase == controller.PhaseLoading {
		b.WriteString(m.spinner.View() + " ")
	}
	if detail := display.RenderDetail(state, m.tab); detail != "" {
		b.WriteByte('\n')
		b.WriteString(detail)
		b.WriteByte('\n')
	}

	b.WriteString(helpStyle.Render("enter: search/select • ↑/↓: navigate • tab: ratios/returns • esc: hide • ctrl+c: quit"))
	return b.String()
}
