package dataflows

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/stockinfo/internal/models"
)

// ValidateSymbol normalizes symbol and rejects a blank one. The syntax is
// left to the provider.
func ValidateSymbol(symbol string) (string, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", ErrSymbolRequired
	}
	return symbol, nil
}

// yearOf returns the leading four characters of a YYYY-MM-DD date.
func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

func round2(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(2))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
