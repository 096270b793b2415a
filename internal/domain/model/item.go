// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemID is the opaque, server-assigned identifier of a tracked item in its
// textual form. The JSON form it arrived in is kept separately in WireID.
type ItemID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ItemID) UnmarshalJSON(b []byte) error {
	var w WireID
	if err := w.UnmarshalJSON(b); err != nil {
		return err
	}
	*id = w.ID
	return nil
}

// jsonNumber is the JSON number grammar; only ids matching it may be sent
// back as bare literals.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// WireID is an item id together with the JSON form the tracking service
// used for it, so it can be sent back exactly as received.
type WireID struct {
	ID     ItemID
	Quoted bool
}

// GuessWireID picks a form for an id that was never received from the
// service: bare when it is a valid JSON number, quoted otherwise.
func GuessWireID(id ItemID) WireID {
	return WireID{ID: id, Quoted: !jsonNumber.MatchString(string(id))}
}

// UnmarshalJSON records the id and whether it was a JSON string.
func (w *WireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = WireID{ID: ItemID(s), Quoted: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*w = WireID{ID: ItemID(n.String())}
	return nil
}

// MarshalJSON writes the id in its received form. A bare id that is not a
// valid JSON number is quoted instead.
func (w WireID) MarshalJSON() ([]byte, error) {
	if w.Quoted || !jsonNumber.MatchString(string(w.ID)) {
		return json.Marshal(string(w.ID))
	}
	return []byte(w.ID), nil
}

// Timestamp is a point in time that may be absent or unparseable. An
// invalid Timestamp means "unknown recency", never an error.
type Timestamp struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// Layouts seen from the tracking service, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses s with the known layouts. It never fails.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	ts := Timestamp{Raw: s}
	if s == "" {
		return ts
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			ts.Valid = true
			return ts
		}
	}
	return ts
}

// At builds a valid Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true, Raw: t.Format(time.RFC3339)}
}

// UnmarshalJSON tolerates null, empty and malformed values.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil || s == nil {
		*ts = Timestamp{}
		return nil //nolint:nilerr // malformed timestamps degrade to unknown
	}
	*ts = ParseTimestamp(*s)
	return nil
}

// MarshalJSON writes the original text back, or null when absent.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Raw)
}

// TrackedItem is one listing the tracking service monitors for a user.
// Name may be long; it is truncated for display and never mutated.
type TrackedItem struct {
	ID           ItemID          `json:"id"`
	WireID       WireID          `json:"-"`
	Name         string          `json:"item_name"`
	URL          string          `json:"url"`
	CurrentPrice decimal.Decimal `json:"price"`
	LowestPrice  decimal.Decimal `json:"lowest_price"`
	HighestPrice decimal.Decimal `json:"highest_price"`
	LastChecked  Timestamp       `json:"last_checked"`
}

// UnmarshalJSON decodes an item, keeping the id's JSON form in WireID.
func (it *TrackedItem) UnmarshalJSON(b []byte) error {
	type plain TrackedItem
	aux := struct {
		*plain
		ID WireID `json:"id"`
	}{plain: (*plain)(it)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	it.ID = aux.ID.ID
	it.WireID = aux.ID
	return nil
}

// MarshalJSON encodes an item with its id in the form it was received in.
func (it TrackedItem) MarshalJSON() ([]byte, error) {
	type plain TrackedItem
	return json.Marshal(struct {
		plain
		ID WireID `json:"id"`
	}{plain: plain(it), ID: it.Wire()})
}

// Wire returns the id to send back to the service. Items built locally,
// without a received form, fall back to GuessWireID.
func (it TrackedItem) Wire() WireID {
	if it.WireID.ID == it.ID && it.ID != "" {
		return it.WireID
	}
	return GuessWireID(it.ID)
}

// HasSinglePricePoint reports whether the historical range is degenerate.
func (it TrackedItem) HasSinglePricePoint() bool {
	return it.LowestPrice.Equal(it.HighestPrice)
}

// Equal compares two items field by field.
func (it TrackedItem) Equal(other TrackedItem) bool {
	return it.ID == other.ID &&
		it.Name == other.Name &&
		it.URL == other.URL &&
		it.CurrentPrice.Equal(other.CurrentPrice) &&
		it.LowestPrice.Equal(other.LowestPrice) &&
		it.HighestPrice.Equal(other.HighestPrice) &&
		it.LastChecked.Valid == other.LastChecked.Valid &&
		it.LastChecked.Time.Equal(other.LastChecked.Time) &&
		it.LastChecked.Raw == other.LastChecked.Raw
}
