package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dyike/stockinfo/internal/controller"
)

// programRenderer forwards controller views to a running program. Views
// are sent from their own goroutine because the controller may notify from
// inside Update; the model drops deliveries older than what it has.
type programRenderer struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRenderer) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRenderer) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

func (r *programRenderer) RenderSuggestions(v controller.SuggestionView) {
	r.send(suggestionsMsg(v))
}

func (r *programRenderer) RenderDetail(v controller.DetailView) {
	r.send(detailMsg(v))
}

// Run starts the full-screen search UI and blocks until the user quits.
func Run(searcher controller.Searcher, fetcher controller.Fetcher, opts ...controller.Option) error {
	renderer := &programRenderer{}
	session := controller.NewSession(searcher, fetcher, renderer, opts...)
	defer session.Close()

	p := tea.NewProgram(New(session), tea.WithAltScreen())
	renderer.attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
