package controller

import (
	"github.com/dyike/stockinfo/internal/models"
)

// Session wires one SuggestionController and one DetailController to a
// Renderer. Its methods are the inputs the presentation layer forwards:
// query edits, focus, submit and suggestion picks.
type Session struct {
	suggestions *SuggestionController
	detail      *DetailController
}

// NewSession creates a session with an empty query and an idle detail panel.
// renderer may be nil.
func NewSession(searcher Searcher, fetcher Fetcher, renderer Renderer, opts ...Option) *Session {
	if renderer == nil {
		renderer = RenderFuncs{}
	}
	return &Session{
		suggestions: NewSuggestionController(searcher, renderer.RenderSuggestions, opts...),
		detail:      NewDetailController(fetcher, renderer.RenderDetail, opts...),
	}
}

// Edit forwards the full text of the query box after a keystroke.
func (s *Session) Edit(text string) {
	s.suggestions.SetQuery(text)
}

// Focus is called when the query box gains focus.
func (s *Session) Focus() {
	s.suggestions.Focus()
}

// HideSuggestions hides the suggestion list, e.g. on Esc.
func (s *Session) HideSuggestions() {
	s.suggestions.Hide()
}

// Submit fetches the detail for the current query text. It reports false
// when the query is blank and nothing happened.
func (s *Session) Submit() bool {
	return s.resolveAndFetch(s.suggestions.Query(), false)
}

// Pick fetches the detail for a clicked suggestion, replacing the query
// text with its symbol. It reports false for a blank symbol.
func (s *Session) Pick(sel models.Suggestion) bool {
	return s.resolveAndFetch(sel.Symbol, true)
}

// resolveAndFetch is the single path behind Submit and Pick.
func (s *Session) resolveAndFetch(symbol string, fromSelection bool) bool {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return false
	}
	if fromSelection {
		s.suggestions.ReplaceQuery(symbol)
	} else {
		s.suggestions.Dismiss()
	}
	return s.detail.Fetch(symbol)
}

func (s *Session) Query() string {
	return s.suggestions.Query()
}

func (s *Session) Suggestions() SuggestionView {
	return s.suggestions.View()
}

func (s *Session) Detail() DetailView {
	return s.detail.View()
}

// Close tears down both controllers. Late responses are ignored afterwards.
func (s *Session) Close() {
	s.suggestions.Close()
	s.detail.Close()
}
