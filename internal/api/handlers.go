package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/dyike/stockinfo/internal/dataflows"
	"github.com/dyike/stockinfo/internal/models"
)

// StockHandler serves symbol search and stock detail from a provider
type StockHandler struct {
	provider     dataflows.Provider
	searchLimit  int
	fetchTimeout time.Duration

	// detail collapses concurrent fetches of one symbol into a single
	// upstream call. Nothing is kept once the call returns.
	detail singleflight.Group
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(provider dataflows.Provider, searchLimit int, fetchTimeout time.Duration) *StockHandler {
	return &StockHandler{
		provider:     provider,
		searchLimit:  searchLimit,
		fetchTimeout: fetchTimeout,
	}
}

// Search returns up to searchLimit symbols matching the query
// GET /search?query=
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		BadRequest(w, r, "query is required")
		return
	}

	suggestions, err := h.provider.SearchSymbols(r.Context(), query, h.searchLimit)
	if err != nil {
		if errors.Is(err, dataflows.ErrNotSupported) {
			NotSupported(w, r, err)
			return
		}
		ExternalAPIError(w, r, h.provider.Name(), err)
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	writeJSON(w, http.StatusOK, suggestions)
}

// Stock returns the full detail for one symbol
// GET /stock?symbol=
func (h *StockHandler) Stock(w http.ResponseWriter, r *http.Request) {
	symbol, err := dataflows.ValidateSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}

	v, err, shared := h.detail.Do(symbol, func() (interface{}, error) {
		// Detached from the first caller so its disconnect does not fail
		// the requests sharing this call.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.fetchTimeout)
		defer cancel()
		return h.provider.StockDetail(ctx, symbol)
	})
	if shared {
		log.Debug().Str("symbol", symbol).Msg("Shared in-flight stock fetch")
	}
	if err != nil {
		if errors.Is(err, dataflows.ErrEmptyProfile) {
			NotFound(w, r, "no profile for "+symbol)
			return
		}
		ExternalAPIError(w, r, h.provider.Name(), err)
		return
	}

	writeJSON(w, http.StatusOK, v.(*models.StockDetail))
}
