package display

import (
	"github.com/shopspring/decimal"
)

// Edge thresholds below/above which labels next to the current marker
// would collide with the low/high labels.
const (
	nearLowestPercent  = 15
	nearHighestPercent = 85
)

var hundred = decimal.NewFromInt(100)

// Position places the current price on the historical range.
type Position struct {
	// SinglePoint is set when lowest == highest; Percent is then meaningless.
	SinglePoint bool    `json:"single_point"`
	Percent     float64 `json:"percent"`
	NearLowest  bool    `json:"near_lowest"`
	NearHighest bool    `json:"near_highest"`
}

// PricePosition maps current onto a 0 to 100 scale between lowest and highest.
// A degenerate range reports the SinglePoint sentinel instead of dividing
// by zero. Out-of-range values from stale samples are clamped.
func PricePosition(lowest, highest, current decimal.Decimal) Position {
	if lowest.Equal(highest) {
		return Position{SinglePoint: true}
	}

	pct := current.Sub(lowest).Mul(hundred).Div(highest.Sub(lowest))
	switch {
	case pct.LessThan(decimal.Zero):
		pct = decimal.Zero
	case pct.GreaterThan(hundred):
		pct = hundred
	}

	f := pct.InexactFloat64()
	return Position{
		Percent:     f,
		NearLowest:  f < nearLowestPercent,
		NearHighest: f > nearHighestPercent,
	}
}
