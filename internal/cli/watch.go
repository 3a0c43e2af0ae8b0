package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/dyike/stockinfo/internal/controller"
	"github.com/dyike/stockinfo/internal/models"
)

// watch is the Renderer used by the non-interactive commands. It keeps the
// newest views and lets a command block until one of interest shows up.
type watch struct {
	mu          sync.Mutex
	suggestions controller.SuggestionView
	detail      controller.DetailView
	lookupErr   error
	changed     chan struct{}
}

func newWatch() *watch {
	return &watch{changed: make(chan struct{})}
}

func (w *watch) RenderSuggestions(v controller.SuggestionView) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if v.Version >= w.suggestions.Version {
		w.suggestions = v
	}
	w.broadcastLocked()
}

func (w *watch) RenderDetail(v controller.DetailView) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if v.Version >= w.detail.Version {
		w.detail = v
	}
	w.broadcastLocked()
}

func (w *watch) reportLookupError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lookupErr = err
	w.broadcastLocked()
}

func (w *watch) broadcastLocked() {
	close(w.changed)
	w.changed = make(chan struct{})
}

// waitSuggestions blocks until the lookup for query resolves. A failed
// lookup renders nothing, so its error is reported through the searcher
// wrapper instead.
func (w *watch) waitSuggestions(ctx context.Context, query string) (controller.SuggestionView, error) {
	for {
		w.mu.Lock()
		v, err, ch := w.suggestions, w.lookupErr, w.changed
		w.mu.Unlock()

		if err != nil {
			return v, err
		}
		if v.Visible && v.Query == query {
			return v, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return v, fmt.Errorf("waiting for suggestions: %w", ctx.Err())
		}
	}
}

// waitDetail blocks until the fetch for symbol reaches Loaded or Failed.
func (w *watch) waitDetail(ctx context.Context, symbol string) (controller.FetchState, error) {
	for {
		w.mu.Lock()
		state, ch := w.detail.State, w.changed
		w.mu.Unlock()

		if state.Symbol == symbol && state.Terminal() {
			return state, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return state, fmt.Errorf("waiting for %s: %w", symbol, ctx.Err())
		}
	}
}

// reportingSearcher passes lookup errors to a watch.
type reportingSearcher struct {
	next  controller.Searcher
	watch *watch
}

func (s reportingSearcher) Search(ctx context.Context, query string) ([]models.Suggestion, error) {
	items, err := s.next.Search(ctx, query)
	if err != nil && ctx.Err() == nil {
		s.watch.reportLookupError(err)
	}
	return items, err
}
