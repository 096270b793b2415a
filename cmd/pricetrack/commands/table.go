package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/okian/pricetrack/internal/domain/display"
	"github.com/okian/pricetrack/internal/domain/model"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// renderItems prints the collection with its derived display values.
func renderItems(w io.Writer, items []model.TrackedItem, now time.Time, nameLimit int) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Item", "Price", "Lowest", "Highest", "Range", "Last checked"})
	for _, v := range display.Views(items, now, nameLimit) {
		t.AppendRow(table.Row{v.ID, v.Name, v.CurrentPrice, v.LowestPrice, v.HighestPrice, rangeLabel(v.Position), v.LastChecked})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tracked", len(items))})
	t.Render()
}

func rangeLabel(p display.Position) string {
	switch {
	case p.SinglePoint:
		return "single price"
	case p.NearLowest:
		return fmt.Sprintf("%.0f%% (near lowest)", p.Percent)
	case p.NearHighest:
		return fmt.Sprintf("%.0f%% (near highest)", p.Percent)
	default:
		return fmt.Sprintf("%.0f%%", p.Percent)
	}
}
