package models

import (
	"github.com/shopspring/decimal"
)

// Suggestion is one autocomplete candidate returned by the search endpoint.
type Suggestion struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// StockDetail is the profile, ratio history and yearly returns of one security.
//
// Numeric fields use decimal.NullDecimal: Valid == false is the explicit
// "unknown" value, which presentation renders as a placeholder.
type StockDetail struct {
	Symbol       string              `json:"symbol"`
	Name         string              `json:"name"`
	Exchange     string              `json:"exchange"`
	Industry     string              `json:"industry"`
	CurrentPrice decimal.NullDecimal `json:"current_price"`
	MarketCap    decimal.NullDecimal `json:"market_cap"`
	Currency     string              `json:"currency"`
	Description  string              `json:"description"`

	FinancialRatios   []RatioRecord  `json:"financial_ratios"`
	HistoricalReturns []ReturnRecord `json:"historical_returns"`
}

// RatioRecord holds the financial ratios reported for one fiscal year.
type RatioRecord struct {
	Year              string              `json:"year"`
	ROE               decimal.NullDecimal `json:"roe,omitzero"`
	ROA               decimal.NullDecimal `json:"roa,omitzero"`
	GrossMargin       decimal.NullDecimal `json:"grossMargin,omitzero"`
	OperatingMargin   decimal.NullDecimal `json:"operatingMargin,omitzero"`
	NetMargin         decimal.NullDecimal `json:"netMargin,omitzero"`
	EPSBasic          decimal.NullDecimal `json:"eps_basic,omitzero"`
	DividendYield     decimal.NullDecimal `json:"dividendYield,omitzero"`
	PayoutRatio       decimal.NullDecimal `json:"payoutRatio,omitzero"`
	PERatio           decimal.NullDecimal `json:"peRatio,omitzero"`
	BookValuePerShare decimal.NullDecimal `json:"bookValuePerShare,omitzero"`
	ROCE              decimal.NullDecimal `json:"roce,omitzero"`
	DebtToEquity      decimal.NullDecimal `json:"debtToEquity,omitzero"`
	InterestCoverage  decimal.NullDecimal `json:"interestCoverage,omitzero"`
	CurrentRatio      decimal.NullDecimal `json:"currentRatio,omitzero"`
	QuickRatio        decimal.NullDecimal `json:"quickRatio,omitzero"`
}

// Values returns the fifteen ratio values in display column order (year excluded).
func (r RatioRecord) Values() []decimal.NullDecimal {
	return []decimal.NullDecimal{
		r.ROE,
		r.ROA,
		r.GrossMargin,
		r.OperatingMargin,
		r.NetMargin,
		r.EPSBasic,
		r.DividendYield,
		r.PayoutRatio,
		r.PERatio,
		r.BookValuePerShare,
		r.ROCE,
		r.DebtToEquity,
		r.InterestCoverage,
		r.CurrentRatio,
		r.QuickRatio,
	}
}

// RatioColumns are the display headers matching RatioRecord.Values, year first.
var RatioColumns = []string{
	"Year",
	"ROE",
	"ROA",
	"Gross Margin",
	"Operating Margin",
	"Net Margin",
	"EPS (Basic)",
	"Dividend Yield",
	"Payout Ratio",
	"P/E",
	"Book Value",
	"ROCE",
	"D/E",
	"Interest Coverage",
	"Current Ratio",
	"Quick Ratio",
}

// ReturnRecord is the price performance of one calendar year.
type ReturnRecord struct {
	Year         string              `json:"year"`
	OpeningPrice decimal.NullDecimal `json:"opening_price"`
	ClosingPrice decimal.NullDecimal `json:"closing_price"`
	ChangePct    decimal.NullDecimal `json:"change_pct"`
}

// ReturnColumns are the display headers for ReturnRecord.
var ReturnColumns = []string{"Year", "Opening Price", "Closing Price", "Change (%)"}
