// Package display derives presentation values from tracked items. Every
// function here is pure: no I/O, no shared state, the clock is a parameter.
package display

import (
	"fmt"
	"time"

	"github.com/okian/pricetrack/internal/domain/model"
)

// AbsoluteLayout renders dates like "Oct 15, 2024, 12:00 PM".
const AbsoluteLayout = "Jan 2, 2006, 03:04 PM"

// UnknownAge is shown when the last check time is absent or unparseable.
const UnknownAge = "Unknown"

const relativeWindow = 7 * 24 * time.Hour

// RelativeAge describes how long ago lastChecked was, relative to now.
//
// Under a minute is "Just now"; minutes, hours and days are pluralized; a
// week or more falls back to the absolute date. A timestamp in the future
// also uses the absolute date so a negative age is never shown.
func RelativeAge(lastChecked model.Timestamp, now time.Time) string {
	if !lastChecked.Valid {
		return UnknownAge
	}
	elapsed := now.Sub(lastChecked.Time)
	if elapsed < 0 || elapsed >= relativeWindow {
		return lastChecked.Time.In(now.Location()).Format(AbsoluteLayout)
	}

	minutes := int(elapsed / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return ago(minutes, "minute")
	case hours < 24:
		return ago(hours, "hour")
	default:
		return ago(days, "day")
	}
}

func ago(n int, unit string) string {
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
