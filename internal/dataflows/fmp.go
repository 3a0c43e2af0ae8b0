package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dyike/stockinfo/internal/logger"
	"github.com/dyike/stockinfo/internal/models"
)

const (
	defaultIndustry    = "N/A"
	defaultDescription = "No description available."
)

// FMPClient handles Financial Modeling Prep API operations
type FMPClient struct {
	client       *resty.Client
	apiKey       string
	historyYears int
	log          zerolog.Logger
}

// NewFMPClient creates a new FMP client. historyYears bounds both the ratio
// history and the yearly returns.
func NewFMPClient(baseURL, apiKey string, historyYears int, timeout time.Duration) *FMPClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)

	return &FMPClient{
		client:       client,
		apiKey:       apiKey,
		historyYears: historyYears,
		log:          logger.Component("fmp"),
	}
}

func (fc *FMPClient) Name() string { return "fmp" }

type fmpSearchResult struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	ExchangeShortName string `json:"exchangeShortName"`
}

type fmpProfile struct {
	Symbol            string              `json:"symbol"`
	CompanyName       string              `json:"companyName"`
	ExchangeShortName string              `json:"exchangeShortName"`
	Industry          string              `json:"industry"`
	Price             decimal.NullDecimal `json:"price"`
	MktCap            decimal.NullDecimal `json:"mktCap"`
	Currency          string              `json:"currency"`
	Description       string              `json:"description"`
}

type fmpHistorical struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date     string              `json:"date"`
		Close    decimal.NullDecimal `json:"close"`
		AdjClose decimal.NullDecimal `json:"adjClose"`
	} `json:"historical"`
}

// SearchSymbols returns up to limit tickers matching query. Entries lacking
// a symbol or a name are dropped.
func (fc *FMPClient) SearchSymbols(ctx context.Context, query string, limit int) ([]models.Suggestion, error) {
	var results []fmpSearchResult
	params := map[string]string{
		"query": query,
		"limit": strconv.Itoa(limit),
	}
	if err := fc.get(ctx, "/search", params, &results); err != nil {
		return nil, fmt.Errorf("failed to search symbols for %q: %w", query, err)
	}

	suggestions := make([]models.Suggestion, 0, len(results))
	for _, r := range results {
		if r.Symbol == "" || r.Name == "" {
			continue
		}
		suggestions = append(suggestions, models.Suggestion{
			Symbol:   r.Symbol,
			Name:     r.Name,
			Exchange: r.ExchangeShortName,
		})
	}
	return suggestions, nil
}

// StockDetail assembles profile, ratios and yearly returns for symbol. Only
// the profile is mandatory; the other sections degrade to empty lists.
func (fc *FMPClient) StockDetail(ctx context.Context, symbol string) (*models.StockDetail, error) {
	symbol, err := ValidateSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var profiles []fmpProfile
	if err := fc.get(ctx, "/profile/"+symbol, nil, &profiles); err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", symbol, err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProfile, symbol)
	}
	p := profiles[0]

	limit := map[string]string{"limit": strconv.Itoa(fc.historyYears)}

	var ratios []FMPRatio
	if err := fc.get(ctx, "/ratios/"+symbol, limit, &ratios); err != nil {
		fc.log.Warn().Err(err).Str("symbol", symbol).Msg("ratios unavailable")
		ratios = nil
	}

	var income []FMPIncomeStatement
	if err := fc.get(ctx, "/income-statement/"+symbol, limit, &income); err != nil {
		fc.log.Warn().Err(err).Str("symbol", symbol).Msg("income statement unavailable")
		income = nil
	}

	var history fmpHistorical
	if err := fc.get(ctx, "/historical-price-full/"+symbol, map[string]string{"serietype": "line"}, &history); err != nil {
		fc.log.Warn().Err(err).Str("symbol", symbol).Msg("price history unavailable")
		history = fmpHistorical{}
	}
	points := make([]PricePoint, 0, len(history.Historical))
	for _, h := range history.Historical {
		points = append(points, PricePoint{Date: h.Date, Close: h.Close, AdjClose: h.AdjClose})
	}

	return &models.StockDetail{
		Symbol:            firstNonEmpty(p.Symbol, symbol),
		Name:              p.CompanyName,
		Exchange:          p.ExchangeShortName,
		Industry:          firstNonEmpty(p.Industry, defaultIndustry),
		CurrentPrice:      p.Price,
		MarketCap:         p.MktCap,
		Currency:          p.Currency,
		Description:       firstNonEmpty(p.Description, defaultDescription),
		FinancialRatios:   BuildFinancialRatios(ratios, income),
		HistoricalReturns: BuildHistoricalReturns(points, fc.historyYears),
	}, nil
}

func (fc *FMPClient) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("apikey", fc.apiKey).
		Get(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}
