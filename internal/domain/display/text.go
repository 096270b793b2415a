package display

import (
	"github.com/shopspring/decimal"
)

const ellipsis = "..."

// Truncate shortens s to at most limit runes, appending an ellipsis when
// anything was cut. The input is never modified.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

// FormatPrice renders an amount as dollars with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
