// Package dataflows holds the remote collaborators: the client for the
// stock info HTTP backend and the market data providers that backend is
// built on.
package dataflows

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dyike/stockinfo/internal/models"
)

var (
	// ErrUpstreamStatus is returned when a remote endpoint answers with a
	// non-2xx status.
	ErrUpstreamStatus = errors.New("upstream returned error status")

	// ErrEmptyProfile is returned when a provider knows nothing about a symbol.
	ErrEmptyProfile = errors.New("no profile for symbol")

	// ErrNotSupported is returned by providers lacking an operation.
	ErrNotSupported = errors.New("operation not supported by provider")

	ErrSymbolRequired = errors.New("symbol cannot be empty")
)

// Provider is a market data source the HTTP backend serves from.
type Provider interface {
	Name() string
	SearchSymbols(ctx context.Context, query string, limit int) ([]models.Suggestion, error)
	StockDetail(ctx context.Context, symbol string) (*models.StockDetail, error)
}

// PricePoint is one daily price used for yearly aggregation. Dates are
// YYYY-MM-DD so they order lexically.
type PricePoint struct {
	Date     string
	Close    decimal.NullDecimal
	AdjClose decimal.NullDecimal
}

// Price returns the adjusted close when known, otherwise the close.
func (p PricePoint) Price() decimal.NullDecimal {
	if p.AdjClose.Valid {
		return p.AdjClose
	}
	return p.Close
}
