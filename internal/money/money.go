// Package money handles the BRL string boundary. Catalog feeds carry prices
// as "R$ 45,90" text; everything past the boundary is decimal.Decimal.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBRL parses a Brazilian-format currency string ("R$ 1.234,56",
// "R$45,90", "45,90") into a decimal amount.
func ParseBRL(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty currency string %q", s)
	}

	// Thousands separator is ".", decimal separator is ",".
	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse currency %q: %w", s, err)
	}
	return d, nil
}

// FormatBRL renders an amount as "R$ 45,90" with two decimal places, the
// format the supplier-facing messages use.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}
