package dataflows

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/stockinfo/internal/models"
)

func num(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func assertDecimal(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	require.True(t, got.Valid, "want %s, got unknown", want)
	assert.True(t, decimal.RequireFromString(want).Equal(got.Decimal), "want %s, got %s", want, got.Decimal)
}

func TestBuildHistoricalReturns(t *testing.T) {
	points := []PricePoint{
		{Date: "2023-06-01", Close: num("105")},
		{Date: "2024-03-01", Close: num("90")},
		{Date: "2023-12-29", Close: num("110.456")},
		{Date: "2022-05-05", Close: num("0")},
		{Date: "2024-01-02", Close: num("999"), AdjClose: num("120")},
		{Date: "2023-01-03", Close: num("100")},
		{Date: "", Close: num("1")},
		{Date: "2021-01-04"},
	}

	records := BuildHistoricalReturns(points, 0)
	require.Len(t, records, 3)

	assert.Equal(t, "2024", records[0].Year)
	assertDecimal(t, "120", records[0].OpeningPrice)
	assertDecimal(t, "90", records[0].ClosingPrice)
	assertDecimal(t, "-25", records[0].ChangePct)

	assert.Equal(t, "2023", records[1].Year)
	assertDecimal(t, "100", records[1].OpeningPrice)
	assertDecimal(t, "110.46", records[1].ClosingPrice)
	assertDecimal(t, "10.46", records[1].ChangePct)

	assert.Equal(t, "2022", records[2].Year)
	assertDecimal(t, "0", records[2].OpeningPrice)
	assert.False(t, records[2].ChangePct.Valid, "zero opening price has no change")
}

func TestBuildHistoricalReturnsLimit(t *testing.T) {
	var points []PricePoint
	for _, y := range []string{"2019", "2020", "2021", "2022", "2023"} {
		points = append(points, PricePoint{Date: y + "-01-02", Close: num("10")})
	}

	records := BuildHistoricalReturns(points, 2)
	require.Len(t, records, 2)
	assert.Equal(t, "2023", records[0].Year)
	assert.Equal(t, "2022", records[1].Year)

	assert.Empty(t, BuildHistoricalReturns(nil, 20))
}

func TestBuildFinancialRatios(t *testing.T) {
	ratios := []FMPRatio{
		{Date: "2023-09-30", ReturnOnEquity: num("1.5608"), PriceEarningsRatio: num("28.4")},
		{Date: "2022-09-24", ReturnOnEquity: num("1.9696")},
		{Date: "2021-09-25"},
	}
	income := []FMPIncomeStatement{
		{Date: "2023-09-30", EarningsPerShareBasic: num("6.16"), EPS: num("6.13")},
		{Date: "2022-09-24", EarningsPerShareBasic: num("0"), EPS: num("6.15")},
	}

	records := BuildFinancialRatios(ratios, income)
	require.Len(t, records, 3)

	assert.Equal(t, "2023", records[0].Year)
	assertDecimal(t, "1.5608", records[0].ROE)
	assertDecimal(t, "28.4", records[0].PERatio)
	assertDecimal(t, "6.16", records[0].EPSBasic)

	assert.Equal(t, "2022", records[1].Year)
	assertDecimal(t, "6.15", records[1].EPSBasic)
	assert.False(t, records[1].ROA.Valid)

	assert.Equal(t, "2021", records[2].Year)
	assert.False(t, records[2].EPSBasic.Valid)
}

func TestRatioRecordOmitsUnknownValues(t *testing.T) {
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

	out, err := json.Marshal(models.RatioRecord{Year: "2021", ROE: num("0.25")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":"2021","roe":0.25}`, string(out))
}

func TestPricePointPrefersAdjustedClose(t *testing.T) {
	assertDecimal(t, "2", PricePoint{Close: num("1"), AdjClose: num("2")}.Price())
	assertDecimal(t, "1", PricePoint{Close: num("1")}.Price())
	assert.False(t, PricePoint{}.Price().Valid)
}
