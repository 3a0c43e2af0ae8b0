package dataflows

import (
	"fmt"

	"github.com/dyike/stockinfo/config"
)

// NewProvider builds the provider selected by cfg.Provider
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderFMP:
		if cfg.FMPAPIKey == "" {
			return nil, fmt.Errorf("FMP_API_KEY not configured")
		}
		return NewFMPClient(cfg.FMPBaseURL, cfg.FMPAPIKey, cfg.HistoryYears, cfg.RequestTimeout), nil
	case config.ProviderYahoo:
		return NewYahooFinanceClient(cfg.HistoryYears), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
