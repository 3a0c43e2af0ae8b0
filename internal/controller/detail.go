package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dyike/stockinfo/internal/models"
)

// DetailController resolves a finalized symbol into FetchState transitions.
// Only the most recently started fetch may change the state; older
// resolutions are dropped on arrival.
type DetailController struct {
	fetcher Fetcher
	log     zerolog.Logger
	notify  func(DetailView)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    FetchState
	seq      uint64
	version  uint64
	inflight context.CancelFunc
	closed   bool
}

// NewDetailController creates a controller in PhaseIdle. notify may be nil.
func NewDetailController(fetcher Fetcher, notify func(DetailView), opts ...Option) *DetailController {
	o := newOptions(opts)
	if notify == nil {
		notify = func(DetailView) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DetailController{
		fetcher: fetcher,
		log:     o.logger.With().Str("component", "detail").Logger(),
		notify:  notify,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Fetch starts a detail fetch for symbol and moves to PhaseLoading,
// dropping any previously loaded payload. A blank symbol is a no-op and
// Fetch reports false. The previous fetch, if still running, has its
// context cancelled and its result ignored.
func (c *DetailController) Fetch(symbol string) bool {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if c.inflight != nil {
		c.inflight()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	c.state = FetchState{Phase: PhaseLoading, Symbol: symbol}
	view := c.changedLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.log.Debug().Str("symbol", symbol).Uint64("seq", seq).Msg("detail fetch started")
	c.notify(view)

	go c.run(ctx, cancel, seq, symbol)
	return true
}

// State returns the current fetch state.
func (c *DetailController) State() FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the current fetch state with its version.
func (c *DetailController) View() DetailView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DetailView{Version: c.version, State: c.state}
}

// Close cancels the outstanding fetch and waits for it to return.
func (c *DetailController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *DetailController) run(ctx context.Context, cancel context.CancelFunc, seq uint64, symbol string) {
	defer c.wg.Done()
	defer cancel()

	detail, err := c.fetcher.FetchStock(ctx, symbol)
	if err == nil && detail == nil {
		err = errEmptyDetail
	}

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.log.Debug().Str("symbol", symbol).Uint64("seq", seq).Msg("discarded superseded detail response")
		return
	}
	c.inflight = nil
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrDetailFetchFailed, symbol, err)
		c.state = FetchState{Phase: PhaseFailed, Symbol: symbol, Err: err}
	} else {
		c.state = FetchState{Phase: PhaseLoaded, Symbol: symbol, Detail: detail}
	}
	view := c.changedLocked()
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Uint64("seq", seq).Msg("detail fetch failed")
	} else {
		c.log.Debug().Str("symbol", symbol).Uint64("seq", seq).Msg("detail loaded")
	}
	c.notify(view)
}

func (c *DetailController) changedLocked() DetailView {
	c.version++
	return DetailView{Version: c.version, State: c.state}
}
