package controller

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/stockinfo/internal/models"
)

const waitTimeout = 2 * time.Second

// manualClock fires timers only when the test advances it.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock    *manualClock
	deadline time.Duration
	f        func()
	done     bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, deadline: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves time forward and runs every timer that became due.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.done && t.deadline <= c.now {
			t.done = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

// Pending counts armed timers that have neither fired nor been stopped.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

type searchResult struct {
	items []models.Suggestion
	err   error
}

type searchCall struct {
	ctx   context.Context
	query string
	reply chan searchResult
}

// gatedSearcher blocks every Search until the test replies to its call.
type gatedSearcher struct {
	calls chan *searchCall
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{calls: make(chan *searchCall, 16)}
}

func (s *gatedSearcher) Search(ctx context.Context, query string) ([]models.Suggestion, error) {
	call := &searchCall{ctx: ctx, query: query, reply: make(chan searchResult, 1)}
	s.calls <- call
	select {
	case res := <-call.reply:
		return res.items, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *gatedSearcher) next(t *testing.T) *searchCall {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(waitTimeout):
		t.Fatalf("expected a suggestion lookup")
		return nil
	}
}

func (s *gatedSearcher) expectNone(t *testing.T) {
	t.Helper()
	select {
	case call := <-s.calls:
		t.Fatalf("unexpected suggestion lookup for %q", call.query)
	default:
	}
}

type fetchResult struct {
	detail *models.StockDetail
	err    error
}

type fetchCall struct {
	ctx    context.Context
	symbol string
	reply  chan fetchResult
}

// gatedFetcher blocks every FetchStock until the test replies, ignoring
// cancellation so late responses can be delivered on purpose. Closing
// release unblocks anything left over at teardown.
type gatedFetcher struct {
	calls   chan *fetchCall
	release chan struct{}
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *fetchCall, 16), release: make(chan struct{})}
}

func (f *gatedFetcher) FetchStock(ctx context.Context, symbol string) (*models.StockDetail, error) {
	call := &fetchCall{ctx: ctx, symbol: symbol, reply: make(chan fetchResult, 1)}
	f.calls <- call
	select {
	case res := <-call.reply:
		return res.detail, res.err
	case <-f.release:
		return nil, context.Canceled
	}
}

func (f *gatedFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(waitTimeout):
		t.Fatalf("expected a detail fetch")
		return nil
	}
}

func (f *gatedFetcher) expectNone(t *testing.T) {
	t.Helper()
	select {
	case call := <-f.calls:
		t.Fatalf("unexpected detail fetch for %q", call.symbol)
	default:
	}
}

// recorder keeps every view it is handed.
type recorder struct {
	mu          sync.Mutex
	suggestions []SuggestionView
	details     []DetailView
}

func (r *recorder) RenderSuggestions(v SuggestionView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestions = append(r.suggestions, v)
}

func (r *recorder) RenderDetail(v DetailView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.details = append(r.details, v)
}

func (r *recorder) suggestionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.suggestions)
}

func (r *recorder) detailCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.details)
}

// syncBuffer is a log sink safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Count(substr string) int {
	return strings.Count(b.String(), substr)
}

func testLogger(buf *syncBuffer) zerolog.Logger {
	return zerolog.New(buf).Level(zerolog.DebugLevel)
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type harness struct {
	clock    *manualClock
	searcher *gatedSearcher
	fetcher  *gatedFetcher
	render   *recorder
	logs     *syncBuffer
	session  *Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:    &manualClock{},
		searcher: newGatedSearcher(),
		fetcher:  newGatedFetcher(),
		render:   &recorder{},
		logs:     &syncBuffer{},
	}
	h.session = NewSession(h.searcher, h.fetcher, h.render,
		WithClock(h.clock),
		WithLogger(testLogger(h.logs)),
	)
	t.Cleanup(func() {
		close(h.fetcher.release)
		h.session.Close()
	})
	return h
}

// showSuggestions drives a query through the debounce and answers its lookup.
func (h *harness) showSuggestions(t *testing.T, query string, items ...models.Suggestion) {
	t.Helper()
	h.session.Edit(query)
	h.clock.Advance(DefaultDebounce)
	call := h.searcher.next(t)
	call.reply <- searchResult{items: items}
	eventually(t, "suggestions for "+query, func() bool {
		v := h.session.Suggestions()
		return v.Visible && len(v.Items) == len(items) && v.Query == strings.ToUpper(query)
	})
}

func suggestion(symbol, name, exchange string) models.Suggestion {
	return models.Suggestion{Symbol: symbol, Name: name, Exchange: exchange}
}

func detailFor(symbol string) *models.StockDetail {
	return &models.StockDetail{Symbol: symbol, Name: symbol + " Inc."}
}
