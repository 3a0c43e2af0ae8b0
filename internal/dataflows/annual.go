package dataflows

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dyike/stockinfo/internal/models"
)

var hundred = decimal.NewFromInt(100)

// FMPRatio is one fiscal year entry of the FMP /ratios endpoint.
type FMPRatio struct {
	Date                    string              `json:"date"`
	ReturnOnEquity          decimal.NullDecimal `json:"returnOnEquity"`
	ReturnOnAssets          decimal.NullDecimal `json:"returnOnAssets"`
	GrossProfitMargin       decimal.NullDecimal `json:"grossProfitMargin"`
	OperatingProfitMargin   decimal.NullDecimal `json:"operatingProfitMargin"`
	NetProfitMargin         decimal.NullDecimal `json:"netProfitMargin"`
	DividendYield           decimal.NullDecimal `json:"dividendYield"`
	PayoutRatio             decimal.NullDecimal `json:"payoutRatio"`
	PriceEarningsRatio      decimal.NullDecimal `json:"priceEarningsRatio"`
	BookValuePerShare       decimal.NullDecimal `json:"bookValuePerShare"`
	ReturnOnCapitalEmployed decimal.NullDecimal `json:"returnOnCapitalEmployed"`
	DebtEquityRatio         decimal.NullDecimal `json:"debtEquityRatio"`
	InterestCoverage        decimal.NullDecimal `json:"interestCoverage"`
	CurrentRatio            decimal.NullDecimal `json:"currentRatio"`
	QuickRatio              decimal.NullDecimal `json:"quickRatio"`
}

// FMPIncomeStatement carries the per-share earnings of one fiscal year.
type FMPIncomeStatement struct {
	Date                  string              `json:"date"`
	EarningsPerShareBasic decimal.NullDecimal `json:"earningsPerShareBasic"`
	EPS                   decimal.NullDecimal `json:"eps"`
}

func (s FMPIncomeStatement) basicEPS() decimal.NullDecimal {
	if s.EarningsPerShareBasic.Valid && !s.EarningsPerShareBasic.Decimal.IsZero() {
		return s.EarningsPerShareBasic
	}
	return s.EPS
}

// BuildFinancialRatios merges ratio entries with the basic EPS reported in
// the income statement of the same year. Output follows the ratio order.
func BuildFinancialRatios(ratios []FMPRatio, income []FMPIncomeStatement) []models.RatioRecord {
	records := make([]models.RatioRecord, 0, len(ratios))
	for _, r := range ratios {
		year := yearOf(r.Date)

		var eps decimal.NullDecimal
		for _, s := range income {
			if yearOf(s.Date) == year {
				eps = s.basicEPS()
				break
			}
		}

		records = append(records, models.RatioRecord{
			Year:              year,
			ROE:               r.ReturnOnEquity,
			ROA:               r.ReturnOnAssets,
			GrossMargin:       r.GrossProfitMargin,
			OperatingMargin:   r.OperatingProfitMargin,
			NetMargin:         r.NetProfitMargin,
			EPSBasic:          eps,
			DividendYield:     r.DividendYield,
			PayoutRatio:       r.PayoutRatio,
			PERatio:           r.PriceEarningsRatio,
			BookValuePerShare: r.BookValuePerShare,
			ROCE:              r.ReturnOnCapitalEmployed,
			DebtToEquity:      r.DebtEquityRatio,
			InterestCoverage:  r.InterestCoverage,
			CurrentRatio:      r.CurrentRatio,
			QuickRatio:        r.QuickRatio,
		})
	}
	return records
}

type yearBounds struct {
	firstDate, lastDate   string
	firstPrice, lastPrice decimal.Decimal
}

// BuildHistoricalReturns aggregates daily prices into calendar years. The
// opening price is the one on the earliest date of the year and the closing
// price the one on the latest. Records are newest first and at most limit
// long when limit > 0. Points without a date or a price are skipped.
func BuildHistoricalReturns(points []PricePoint, limit int) []models.ReturnRecord {
	years := make(map[string]*yearBounds)
	for _, p := range points {
		year := yearOf(p.Date)
		price := p.Price()
		if year == "" || !price.Valid {
			continue
		}

		b, ok := years[year]
		if !ok {
			years[year] = &yearBounds{
				firstDate: p.Date, firstPrice: price.Decimal,
				lastDate: p.Date, lastPrice: price.Decimal,
			}
			continue
		}
		if p.Date < b.firstDate {
			b.firstDate, b.firstPrice = p.Date, price.Decimal
		}
		if p.Date > b.lastDate {
			b.lastDate, b.lastPrice = p.Date, price.Decimal
		}
	}

	keys := make([]string, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	records := make([]models.ReturnRecord, 0, len(keys))
	for _, y := range keys {
		b := years[y]
		var change decimal.NullDecimal
		if !b.firstPrice.IsZero() {
			change = decimal.NewNullDecimal(b.lastPrice.Sub(b.firstPrice).Div(b.firstPrice).Mul(hundred))
		}
		records = append(records, models.ReturnRecord{
			Year:         y,
			OpeningPrice: round2(decimal.NewNullDecimal(b.firstPrice)),
			ClosingPrice: round2(decimal.NewNullDecimal(b.lastPrice)),
			ChangePct:    round2(change),
		})
	}
	return records
}
