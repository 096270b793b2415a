package display

import (
	"time"

	"github.com/okian/pricetrack/internal/domain/model"
)

// ItemView is the render-ready shape of a tracked item.
type ItemView struct {
	ID           model.ItemID `json:"id"`
	Name         string       `json:"name"`
	FullName     string       `json:"full_name"`
	URL          string       `json:"url"`
	CurrentPrice string       `json:"current_price"`
	LowestPrice  string       `json:"lowest_price"`
	HighestPrice string       `json:"highest_price"`
	LastChecked  string       `json:"last_checked"`
	Position     Position     `json:"position"`
}

// View derives the presentation values for one item.
func View(it model.TrackedItem, now time.Time, nameLimit int) ItemView {
	return ItemView{
		ID:           it.ID,
		Name:         Truncate(it.Name, nameLimit),
		FullName:     it.Name,
		URL:          it.URL,
		CurrentPrice: FormatPrice(it.CurrentPrice),
		LowestPrice:  FormatPrice(it.LowestPrice),
		HighestPrice: FormatPrice(it.HighestPrice),
		LastChecked:  RelativeAge(it.LastChecked, now),
		Position:     PricePosition(it.LowestPrice, it.HighestPrice, it.CurrentPrice),
	}
}

// Views derives presentation values for a whole collection, keeping order.
func Views(items []model.TrackedItem, now time.Time, nameLimit int) []ItemView {
	out := make([]ItemView, len(items))
	for i, it := range items {
		out[i] = View(it, now, nameLimit)
	}
	return out
}
