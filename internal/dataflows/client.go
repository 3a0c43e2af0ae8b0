package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/stockinfo/internal/models"
)

// StockAPIClient talks to the stock info HTTP backend. It is the remote
// searcher and fetcher the interaction controllers run against.
type StockAPIClient struct {
	client *resty.Client
}

// NewStockAPIClient creates a new client for the backend at baseURL
func NewStockAPIClient(baseURL string, timeout time.Duration) *StockAPIClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &StockAPIClient{client: client}
}

// Search returns the suggestions for query. A null body is an empty list.
func (c *StockAPIClient) Search(ctx context.Context, query string) ([]models.Suggestion, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}

	var suggestions []models.Suggestion
	if err := json.Unmarshal(resp.Body(), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	return suggestions, nil
}

// FetchStock returns the full detail for symbol.
func (c *StockAPIClient) FetchStock(ctx context.Context, symbol string) (*models.StockDetail, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get("/stock")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}

	// Older backends answer 200 with {"error": "..."}.
	if msg := errorMessage(resp.Body()); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProfile, msg)
	}

	var detail *models.StockDetail
	if err := json.Unmarshal(resp.Body(), &detail); err != nil {
		return nil, fmt.Errorf("failed to parse stock response: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProfile, symbol)
	}
	return detail, nil
}

func statusError(resp *resty.Response) error {
	msg := errorMessage(resp.Body())
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	if msg == "" {
		return fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode())
	}
	return fmt.Errorf("%w: %d: %s", ErrUpstreamStatus, resp.StatusCode(), msg)
}

// errorMessage extracts the message of an error body, either the
// {"error": {"message": ...}} envelope or a bare {"error": "..."}.
func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil {
		return text
	}
	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		return detail.Message
	}
	return ""
}
