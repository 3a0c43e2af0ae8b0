package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/stockinfo/config"
	"github.com/dyike/stockinfo/internal/dataflows"
	"github.com/dyike/stockinfo/internal/logger"
)

// Probes the configured provider directly, bypassing the HTTP backend.
// Usage: dataflow [SYMBOL] [QUERY]
func main() {
	cfg := config.DefaultConfig()
	if err := logger.Init(logger.Config{Level: "debug", Format: "pretty", Console: true, ServiceName: "dataflow"}); err != nil {
		panic(err)
	}
	decimal.MarshalJSONWithoutQuotes = true

	symbol, query := "AAPL", ""
	if len(os.Args) > 1 {
		symbol = os.Args[1]
	}
	if len(os.Args) > 2 {
		query = os.Args[2]
	}

	provider, err := dataflows.NewProvider(cfg)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if query != "" {
		suggestions, err := provider.SearchSymbols(ctx, query, cfg.SearchLimit)
		if err != nil {
			fmt.Println("search:", err)
		} else {
			payload, _ := json.MarshalIndent(suggestions, "", "  ")
			fmt.Println(string(payload))
		}
	}

	detail, err := provider.StockDetail(ctx, symbol)
	if err != nil {
		panic(err)
	}

	payload, _ := json.MarshalIndent(detail, "", "  ")
	fmt.Println(string(payload))
}
