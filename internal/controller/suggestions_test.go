package controller

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dyike/stockinfo/internal/models"
)

func TestDebounceOnlyLastEditLooksUp(t *testing.T) {
	h := newHarness(t)

	h.session.Edit("a")
	h.clock.Advance(100 * time.Millisecond)
	h.session.Edit("aa")
	h.clock.Advance(100 * time.Millisecond)
	h.session.Edit("aap")

	h.clock.Advance(DefaultDebounce - time.Millisecond)
	h.searcher.expectNone(t)

	h.clock.Advance(time.Millisecond)
	call := h.searcher.next(t)
	if call.query != "AAP" {
		t.Fatalf("lookup query = %q, want AAP", call.query)
	}
	h.searcher.expectNone(t)
	if n := h.clock.Pending(); n != 0 {
		t.Fatalf("pending timers = %d, want 0", n)
	}
	call.reply <- searchResult{}
}

func TestQueryIsUppercased(t *testing.T) {
	h := newHarness(t)

	h.session.Edit("msf")
	if got := h.session.Query(); got != "MSF" {
		t.Fatalf("Query() = %q, want MSF", got)
	}
}

func TestBlankQueryClearsWithoutLookup(t *testing.T) {
	h := newHarness(t)
	h.showSuggestions(t, "aa", suggestion("AAL", "American Airlines", "NASDAQ"))

	before := h.render.suggestionCount()
	h.session.Edit("   ")

	v := h.session.Suggestions()
	if len(v.Items) != 0 {
		t.Fatalf("items = %v, want none", v.Items)
	}
	if h.render.suggestionCount() != before+1 {
		t.Fatalf("blank query was not rendered immediately")
	}
	if n := h.clock.Pending(); n != 0 {
		t.Fatalf("pending timers = %d, want 0", n)
	}
	h.clock.Advance(time.Second)
	h.searcher.expectNone(t)
}

func TestStaleSuggestionResponseDiscarded(t *testing.T) {
	h := newHarness(t)

	h.session.Edit("AA")
	h.clock.Advance(DefaultDebounce)
	first := h.searcher.next(t)

	h.session.Edit("AAP")
	h.clock.Advance(DefaultDebounce)
	second := h.searcher.next(t)

	second.reply <- searchResult{items: []models.Suggestion{suggestion("AAPL", "Apple Inc.", "NASDAQ")}}
	eventually(t, "AAP suggestions", func() bool {
		v := h.session.Suggestions()
		return len(v.Items) == 1 && v.Items[0].Symbol == "AAPL"
	})
	rendered := h.render.suggestionCount()

	first.reply <- searchResult{items: []models.Suggestion{suggestion("AAL", "American Airlines", "NASDAQ")}}
	eventually(t, "stale response discard", func() bool {
		return h.logs.Count("discarded superseded suggestion response") == 1
	})

	v := h.session.Suggestions()
	if v.Query != "AAP" || len(v.Items) != 1 || v.Items[0].Symbol != "AAPL" {
		t.Fatalf("view = %+v, want AAP with AAPL", v)
	}
	if h.render.suggestionCount() != rendered {
		t.Fatalf("stale response was rendered")
	}
}

func TestLookupFailureKeepsPreviousList(t *testing.T) {
	h := newHarness(t)
	h.showSuggestions(t, "AAP", suggestion("AAPL", "Apple Inc.", "NASDAQ"))
	rendered := h.render.suggestionCount()

	h.session.Edit("AAPX")
	h.clock.Advance(DefaultDebounce)
	call := h.searcher.next(t)
	call.reply <- searchResult{err: errors.New("connection refused")}

	eventually(t, "failure log", func() bool {
		return h.logs.Count(`"message":"suggestion lookup failed"`) == 1
	})
	v := h.session.Suggestions()
	if !v.Visible || len(v.Items) != 1 || v.Items[0].Symbol != "AAPL" {
		t.Fatalf("view = %+v, want previous AAPL list", v)
	}
	if h.render.suggestionCount() != rendered {
		t.Fatalf("failed lookup was rendered")
	}
	if got := h.logs.String(); !strings.Contains(got, ErrLookupFailed.Error()) {
		t.Fatalf("log %q does not carry %v", got, ErrLookupFailed)
	}
}

func TestEmptyResponseClearsList(t *testing.T) {
	h := newHarness(t)
	h.showSuggestions(t, "AAP", suggestion("AAPL", "Apple Inc.", "NASDAQ"))

	h.session.Edit("ZZZZZZ")
	h.clock.Advance(DefaultDebounce)
	h.searcher.next(t).reply <- searchResult{}

	eventually(t, "empty list", func() bool {
		v := h.session.Suggestions()
		return v.Query == "ZZZZZZ" && len(v.Items) == 0
	})
}

func TestFocusAndHide(t *testing.T) {
	h := newHarness(t)

	h.session.Focus()
	if h.session.Suggestions().Visible {
		t.Fatalf("focus with blank query made the list visible")
	}

	h.showSuggestions(t, "MS", suggestion("MSFT", "Microsoft Corporation", "NASDAQ"))
	h.session.HideSuggestions()
	if h.session.Suggestions().Visible {
		t.Fatalf("list still visible after hide")
	}
	h.session.Focus()
	if !h.session.Suggestions().Visible {
		t.Fatalf("list hidden after focus with a query")
	}
}

func TestCloseStopsDebounce(t *testing.T) {
	h := newHarness(t)

	h.session.Edit("TS")
	if n := h.clock.Pending(); n != 1 {
		t.Fatalf("pending timers = %d, want 1", n)
	}
	rendered := h.render.suggestionCount()

	h.session.Close()
	if n := h.clock.Pending(); n != 0 {
		t.Fatalf("pending timers after close = %d, want 0", n)
	}
	h.clock.Advance(time.Second)
	h.searcher.expectNone(t)

	h.session.Edit("TSL")
	if h.render.suggestionCount() != rendered {
		t.Fatalf("edit after close was rendered")
	}
}

func TestCloseDropsInflightLookup(t *testing.T) {
	h := newHarness(t)

	h.session.Edit("GO")
	h.clock.Advance(DefaultDebounce)
	call := h.searcher.next(t)
	rendered := h.render.suggestionCount()

	h.session.Close()
	if call.ctx.Err() == nil {
		t.Fatalf("lookup context not cancelled on close")
	}
	if h.render.suggestionCount() != rendered {
		t.Fatalf("lookup rendered after close")
	}
}

func TestSuggestionVersionsIncrease(t *testing.T) {
	h := newHarness(t)
	h.showSuggestions(t, "A", suggestion("A", "Agilent", "NYSE"))
	h.session.HideSuggestions()
	h.session.Focus()
	h.session.Edit("")

	h.render.mu.Lock()
	defer h.render.mu.Unlock()
	var last uint64
	for _, v := range h.render.suggestions {
		if v.Version <= last {
			t.Fatalf("version %d not after %d", v.Version, last)
		}
		last = v.Version
	}
}
