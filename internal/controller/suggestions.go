package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/stockinfo/internal/models"
)

// SuggestionController debounces query edits into suggestion lookups.
//
// Every query mutation bumps seq. A debounce timer or an in-flight lookup
// captures seq when it is armed or sent and has no effect unless seq is
// still current when it fires or resolves.
type SuggestionController struct {
	searcher Searcher
	clock    Clock
	debounce time.Duration
	log      zerolog.Logger
	notify   func(SuggestionView)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	query   string
	items   []models.Suggestion
	visible bool
	seq     uint64
	version uint64
	timer   Timer
	closed  bool
}

// NewSuggestionController creates a controller with an empty query. notify
// may be nil.
func NewSuggestionController(searcher Searcher, notify func(SuggestionView), opts ...Option) *SuggestionController {
	o := newOptions(opts)
	if notify == nil {
		notify = func(SuggestionView) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SuggestionController{
		searcher: searcher,
		clock:    o.clock,
		debounce: o.debounce,
		log:      o.logger.With().Str("component", "suggestions").Logger(),
		notify:   notify,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetQuery records a keystroke edit. The text is uppercased. A blank query
// clears the list at once without a lookup; anything else re-arms the
// debounce timer.
func (c *SuggestionController) SetQuery(text string) {
	query := strings.ToUpper(text)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = query
	c.seq++
	c.stopTimerLocked()

	if strings.TrimSpace(query) == "" {
		c.items = nil
		view := c.changedLocked()
		c.mu.Unlock()
		c.notify(view)
		return
	}

	seq := c.seq
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.fire(seq) })
	c.mu.Unlock()
}

// ReplaceQuery overwrites the query after a selection. It hides the list
// and invalidates pending work but does not schedule a lookup.
func (c *SuggestionController) ReplaceQuery(query string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = query
	c.invalidateLocked()
	c.visible = false
	view := c.changedLocked()
	c.mu.Unlock()
	c.notify(view)
}

// Dismiss hides the list and drops any armed timer or in-flight lookup.
// Called when a detail fetch begins.
func (c *SuggestionController) Dismiss() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.invalidateLocked()
	c.visible = false
	view := c.changedLocked()
	c.mu.Unlock()
	c.notify(view)
}

// Focus shows the list again when the input regains focus with a query.
func (c *SuggestionController) Focus() {
	c.mu.Lock()
	if c.closed || strings.TrimSpace(c.query) == "" {
		c.mu.Unlock()
		return
	}
	c.visible = true
	view := c.changedLocked()
	c.mu.Unlock()
	c.notify(view)
}

// Hide hides the list without touching pending lookups.
func (c *SuggestionController) Hide() {
	c.mu.Lock()
	if c.closed || !c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = false
	view := c.changedLocked()
	c.mu.Unlock()
	c.notify(view)
}

// Query returns the current query text.
func (c *SuggestionController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// View returns the current suggestion state.
func (c *SuggestionController) View() SuggestionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Close stops the debounce timer, cancels in-flight lookups and waits for
// them to return. Nothing is applied or rendered after Close.
func (c *SuggestionController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *SuggestionController) fire(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	query := c.query
	c.wg.Add(1)
	c.mu.Unlock()

	go c.lookup(seq, query)
}

func (c *SuggestionController) lookup(seq uint64, query string) {
	defer c.wg.Done()

	items, err := c.searcher.Search(c.ctx, strings.TrimSpace(query))

	c.mu.Lock()
	if c.closed || seq != c.seq || query != c.query {
		c.mu.Unlock()
		c.log.Debug().Str("query", query).Uint64("seq", seq).Msg("discarded superseded suggestion response")
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.log.Warn().
			Err(fmt.Errorf("%w: %w", ErrLookupFailed, err)).
			Str("query", query).
			Uint64("seq", seq).
			Msg("suggestion lookup failed")
		return
	}
	c.items = append([]models.Suggestion(nil), items...)
	c.visible = true
	view := c.changedLocked()
	c.mu.Unlock()

	c.log.Debug().Str("query", query).Int("count", len(items)).Msg("suggestions updated")
	c.notify(view)
}

func (c *SuggestionController) invalidateLocked() {
	c.seq++
	c.stopTimerLocked()
}

func (c *SuggestionController) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *SuggestionController) changedLocked() SuggestionView {
	c.version++
	return c.viewLocked()
}

func (c *SuggestionController) viewLocked() SuggestionView {
	return SuggestionView{
		Version: c.version,
		Query:   c.query,
		Items:   append([]models.Suggestion(nil), c.items...),
		Visible: c.visible,
	}
}
