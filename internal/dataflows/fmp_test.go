package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

// fmpStub serves canned bodies by path and rejects requests without the key.
func fmpStub(t *testing.T, routes map[string]string) *FMPClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewFMPClient(srv.URL, testAPIKey, 20, 5*time.Second)
}

func TestFMPSearchSymbols(t *testing.T) {
	client := fmpStub(t, map[string]string{
		"/search": `[
			{"symbol":"AAPL","name":"Apple Inc.","exchangeShortName":"NASDAQ"},
			{"symbol":"APLE","name":"","exchangeShortName":"NYSE"},
			{"symbol":"","name":"Nameless","exchangeShortName":"OTC"},
			{"symbol":"AAPL.NE","name":"Apple CDR"}
		]`,
	})

	got, err := client.SearchSymbols(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, "NASDAQ", got[0].Exchange)
	assert.Equal(t, "AAPL.NE", got[1].Symbol)
	assert.Equal(t, "", got[1].Exchange)
}

func TestFMPSearchSymbolsUpstreamFailure(t *testing.T) {
	client := fmpStub(t, map[string]string{})

	_, err := client.SearchSymbols(context.Background(), "AAPL", 10)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestFMPStockDetail(t *testing.T) {
	client := fmpStub(t, map[string]string{
		"/profile/AAPL": `[{
			"symbol":"AAPL","companyName":"Apple Inc.","exchangeShortName":"NASDAQ",
			"industry":"Consumer Electronics","price":189.84,"mktCap":2952000000000,
			"currency":"USD","description":"Designs phones."
		}]`,
		"/ratios/AAPL": `[
			{"date":"2023-09-30","returnOnEquity":1.56,"currentRatio":0.99},
			{"date":"2022-09-24","returnOnEquity":1.97,"dividendYield":null}
		]`,
		"/income-statement/AAPL": `[
			{"date":"2023-09-30","eps":6.16},
			{"date":"2022-09-24","earningsPerShareBasic":6.15}
		]`,
		"/historical-price-full/AAPL": `{"symbol":"AAPL","historical":[
			{"date":"2024-02-01","close":186.86},
			{"date":"2024-01-02","close":185.64},
			{"date":"2023-12-29","close":192.53},
			{"date":"2023-01-03","close":125.07}
		]}`,
	})

	detail, err := client.StockDetail(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", detail.Symbol)
	assert.Equal(t, "Apple Inc.", detail.Name)
	assert.Equal(t, "NASDAQ", detail.Exchange)
	assert.Equal(t, "Consumer Electronics", detail.Industry)
	assertDecimal(t, "189.84", detail.CurrentPrice)
	assertDecimal(t, "2952000000000", detail.MarketCap)
	assert.Equal(t, "USD", detail.Currency)

	require.Len(t, detail.FinancialRatios, 2)
	assert.Equal(t, "2023", detail.FinancialRatios[0].Year)
	assertDecimal(t, "6.16", detail.FinancialRatios[0].EPSBasic)
	assertDecimal(t, "0.99", detail.FinancialRatios[0].CurrentRatio)
	assertDecimal(t, "6.15", detail.FinancialRatios[1].EPSBasic)
	assert.False(t, detail.FinancialRatios[1].DividendYield.Valid)

	require.Len(t, detail.HistoricalReturns, 2)
	assert.Equal(t, "2024", detail.HistoricalReturns[0].Year)
	assertDecimal(t, "185.64", detail.HistoricalReturns[0].OpeningPrice)
	assertDecimal(t, "186.86", detail.HistoricalReturns[0].ClosingPrice)
	assertDecimal(t, "0.66", detail.HistoricalReturns[0].ChangePct)
	assert.Equal(t, "2023", detail.HistoricalReturns[1].Year)
	assertDecimal(t, "53.94", detail.HistoricalReturns[1].ChangePct)
}

func TestFMPStockDetailDefaultsAndDegradation(t *testing.T) {
	client := fmpStub(t, map[string]string{
		"/profile/IBM": `[{"symbol":"IBM","companyName":"IBM","exchangeShortName":"NYSE","price":170,"mktCap":155000000000,"currency":"USD"}]`,
	})

	detail, err := client.StockDetail(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, defaultIndustry, detail.Industry)
	assert.Equal(t, defaultDescription, detail.Description)
	assert.NotNil(t, detail.FinancialRatios)
	assert.Empty(t, detail.FinancialRatios)
	assert.NotNil(t, detail.HistoricalReturns)
	assert.Empty(t, detail.HistoricalReturns)
}

func TestFMPStockDetailProfileFailures(t *testing.T) {
	t.Run("empty profile", func(t *testing.T) {
		client := fmpStub(t, map[string]string{"/profile/NOPE": `[]`})
		_, err := client.StockDetail(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrEmptyProfile)
	})

	t.Run("profile status", func(t *testing.T) {
		client := fmpStub(t, map[string]string{})
		_, err := client.StockDetail(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrUpstreamStatus)
	})

	t.Run("blank symbol", func(t *testing.T) {
		client := fmpStub(t, map[string]string{})
		_, err := client.StockDetail(context.Background(), "  ")
		assert.ErrorIs(t, err, ErrSymbolRequired)
	})
}
