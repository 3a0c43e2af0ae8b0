// Package controller turns query edits, submits and suggestion picks into
// debounced suggestion lookups and detail fetches, and tracks the resulting
// state. Superseded responses are discarded by request sequence number.
package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dyike/stockinfo/internal/models"
)

// DefaultDebounce is how long the query must stay unchanged before a lookup.
const DefaultDebounce = 300 * time.Millisecond

// Searcher is the remote symbol search endpoint.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Suggestion, error)
}

// Fetcher is the remote stock detail endpoint.
type Fetcher interface {
	FetchStock(ctx context.Context, symbol string) (*models.StockDetail, error)
}

// Phase is the detail fetch lifecycle position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchState is the Detail Controller state. Detail is set only in
// PhaseLoaded and Err only in PhaseFailed.
type FetchState struct {
	Phase  Phase
	Symbol string
	Detail *models.StockDetail
	Err    error
}

// Terminal reports whether the state is the resolution of a fetch.
func (s FetchState) Terminal() bool {
	return s.Phase == PhaseLoaded || s.Phase == PhaseFailed
}

// SuggestionView is what the presentation layer renders for the suggestion box.
type SuggestionView struct {
	Version uint64
	Query   string
	Items   []models.Suggestion
	Visible bool
}

// DetailView is what the presentation layer renders for the detail panel.
type DetailView struct {
	Version uint64
	State   FetchState
}

// Renderer is the presentation collaborator. Calls are made outside
// controller locks and may arrive from several goroutines; Version
// increases with every change so a receiver can drop older views.
type Renderer interface {
	RenderSuggestions(SuggestionView)
	RenderDetail(DetailView)
}

// RenderFuncs adapts plain functions to Renderer. Nil fields are skipped.
type RenderFuncs struct {
	Suggestions func(SuggestionView)
	Detail      func(DetailView)
}

func (r RenderFuncs) RenderSuggestions(v SuggestionView) {
	if r.Suggestions != nil {
		r.Suggestions(v)
	}
}

func (r RenderFuncs) RenderDetail(v DetailView) {
	if r.Detail != nil {
		r.Detail(v)
	}
}

type options struct {
	debounce time.Duration
	clock    Clock
	logger   zerolog.Logger
}

// Option configures a controller.
type Option func(*options)

func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the observability collaborator that receives lookup and
// fetch failures.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{
		debounce: DefaultDebounce,
		clock:    wallClock{},
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
