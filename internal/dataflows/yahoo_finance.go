package dataflows

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"github.com/dyike/stockinfo/internal/models"
)

// YahooFinanceClient serves stock details from Yahoo Finance. Yahoo has no
// symbol search, and no ratio history is available, so FinancialRatios is
// always empty.
type YahooFinanceClient struct {
	historyYears int
	now          func() time.Time

	getEquity func(symbol string) (*finance.Equity, error)
	getChart  func(params *chart.Params) *chart.Iter
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient(historyYears int) *YahooFinanceClient {
	return &YahooFinanceClient{
		historyYears: historyYears,
		now:          time.Now,
		getEquity:    equity.Get,
		getChart:     chart.Get,
	}
}

func (yf *YahooFinanceClient) Name() string { return "yahoo" }

func (yf *YahooFinanceClient) SearchSymbols(ctx context.Context, query string, limit int) ([]models.Suggestion, error) {
	return nil, fmt.Errorf("yahoo symbol search: %w", ErrNotSupported)
}

// StockDetail builds the profile from the equity quote and the yearly
// returns from daily bars over the configured history window.
func (yf *YahooFinanceClient) StockDetail(ctx context.Context, symbol string) (*models.StockDetail, error) {
	symbol, err := ValidateSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := yf.getEquity(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProfile, symbol)
	}

	points, err := yf.dailyPrices(ctx, symbol)
	if err != nil {
		return nil, err
	}

	name := firstNonEmpty(q.LongName, q.ShortName, symbol)
	return &models.StockDetail{
		Symbol:            symbol,
		Name:              name,
		Exchange:          firstNonEmpty(q.FullExchangeName, q.ExchangeID),
		Industry:          defaultIndustry,
		CurrentPrice:      decimal.NewNullDecimal(decimal.NewFromFloat(q.RegularMarketPrice)),
		MarketCap:         marketCap(q.MarketCap),
		Currency:          q.CurrencyID,
		Description:       defaultDescription,
		FinancialRatios:   []models.RatioRecord{},
		HistoricalReturns: BuildHistoricalReturns(points, yf.historyYears),
	}, nil
}

func (yf *YahooFinanceClient) dailyPrices(ctx context.Context, symbol string) ([]PricePoint, error) {
	end := yf.now()
	start := time.Date(end.Year()-yf.historyYears+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	iter := yf.getChart(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var points []PricePoint
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := iter.Bar()
		p := PricePoint{
			Date:  time.Unix(int64(bar.Timestamp), 0).UTC().Format("2006-01-02"),
			Close: decimal.NewNullDecimal(bar.Close),
		}
		if !bar.AdjClose.IsZero() {
			p.AdjClose = decimal.NewNullDecimal(bar.AdjClose)
		}
		points = append(points, p)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
	}
	return points, nil
}

// marketCap treats a non-positive capitalization as unknown.
func marketCap(v int64) decimal.NullDecimal {
	if v <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}
