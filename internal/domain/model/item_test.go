package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrackedItemDecoding(t *testing.T) {
	Convey("Given a tracked item payload from the tracking service", t, func() {
		payload := `{
			"id": 42,
			"item_name": "Wireless Earbuds",
			"url": "https://www.amazon.com/dp/B08N5WRWNW",
			"price": "19.99",
			"lowest_price": 17.5,
			"highest_price": "24.00",
			"last_checked": "Tue, 15 Oct 2024 12:00:00 GMT"
		}`

		var it model.TrackedItem
		err := json.Unmarshal([]byte(payload), &it)

		Convey("Then numbers and numeric strings both decode", func() {
			So(err, ShouldBeNil)
			So(it.ID, ShouldEqual, model.ItemID("42"))
			So(it.Name, ShouldEqual, "Wireless Earbuds")
			So(it.CurrentPrice.Equal(decimal.RequireFromString("19.99")), ShouldBeTrue)
			So(it.LowestPrice.Equal(decimal.RequireFromString("17.5")), ShouldBeTrue)
			So(it.HighestPrice.Equal(decimal.NewFromInt(24)), ShouldBeTrue)
			So(it.HasSinglePricePoint(), ShouldBeFalse)
		})

		Convey("Then the RFC1123 timestamp is valid", func() {
			So(it.LastChecked.Valid, ShouldBeTrue)
			So(it.LastChecked.Time.Equal(time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Then the wire id keeps the numeric id bare", func() {
			out, err := json.Marshal(it.Wire())
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, "42")
		})
	})
}

func TestItemID(t *testing.T) {
	Convey("Given string identifiers", t, func() {
		var id model.ItemID
		So(json.Unmarshal([]byte(`"a1b2"`), &id), ShouldBeNil)
		So(id, ShouldEqual, model.ItemID("a1b2"))

		out, err := json.Marshal(id)
		So(err, ShouldBeNil)
		So(string(out), ShouldEqual, `"a1b2"`)
	})

	Convey("Given a malformed identifier", t, func() {
		var id model.ItemID
		So(json.Unmarshal([]byte(`{}`), &id), ShouldNotBeNil)
	})
}

func TestWireID(t *testing.T) {
	Convey("Given ids in each JSON form", t, func() {
		cases := []struct {
			raw    string
			id     model.ItemID
			quoted bool
		}{
			{`"42"`, "42", true},
			{`"007"`, "007", true},
			{`7`, "7", false},
		}

		for _, tc := range cases {
			var w model.WireID
			So(json.Unmarshal([]byte(tc.raw), &w), ShouldBeNil)
			So(w.ID, ShouldEqual, tc.id)
			So(w.Quoted, ShouldEqual, tc.quoted)

			out, err := json.Marshal(w)
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, tc.raw)
		}
	})

	Convey("Given a bare id that is not a JSON number", t, func() {
		out, err := json.Marshal(model.WireID{ID: "007"})

		Convey("Then it is quoted instead of emitted as invalid JSON", func() {
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, `"007"`)
		})
	})

	Convey("Given ids with no received form", t, func() {
		So(model.GuessWireID("42"), ShouldResemble, model.WireID{ID: "42"})
		So(model.GuessWireID("007"), ShouldResemble, model.WireID{ID: "007", Quoted: true})
		So(model.GuessWireID("abc"), ShouldResemble, model.WireID{ID: "abc", Quoted: true})
	})

	Convey("Given an item listed with a quoted numeric id", t, func() {
		var it model.TrackedItem
		So(json.Unmarshal([]byte(`{"id":"42","item_name":"Lamp","price":1,"lowest_price":1,"highest_price":1}`), &it), ShouldBeNil)

		Convey("Then the text id and its form are both kept", func() {
			So(it.ID, ShouldEqual, model.ItemID("42"))
			So(it.Wire(), ShouldResemble, model.WireID{ID: "42", Quoted: true})
			So(it.Name, ShouldEqual, "Lamp")
		})

		Convey("Then re-encoding the item keeps the id quoted", func() {
			out, err := json.Marshal(it)
			So(err, ShouldBeNil)
			So(string(out), ShouldContainSubstring, `"id":"42"`)
		})

		Convey("Then changing the id drops the stale form", func() {
			it.ID = "43"
			So(it.Wire(), ShouldResemble, model.WireID{ID: "43"})
		})
	})
}

func TestTimestamp(t *testing.T) {
	Convey("Given last_checked values of varying quality", t, func() {
		cases := map[string]bool{
			`"2024-10-15T12:00:00Z"`:      true,
			`"2024-10-15T12:00:00.123Z"`:  true,
			`"2024-10-15 12:00:00"`:       true,
			`"2024-10-15"`:                true,
			`"yesterday-ish"`:             false,
			`""`:                          false,
			`null`:                        false,
			`1729000000`:                  false,
		}
		for raw, valid := range cases {
			var ts model.Timestamp
			So(json.Unmarshal([]byte(raw), &ts), ShouldBeNil)
			So(ts.Valid, ShouldEqual, valid)
		}
	})

	Convey("Given an absent timestamp", t, func() {
		out, err := json.Marshal(model.Timestamp{})
		So(err, ShouldBeNil)
		So(string(out), ShouldEqual, "null")
	})

	Convey("Given a timestamp built with At", t, func() {
		now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		ts := model.At(now)
		So(ts.Valid, ShouldBeTrue)
		So(model.ParseTimestamp(ts.Raw).Time.Equal(now), ShouldBeTrue)
	})
}

func TestTrackedItemEqual(t *testing.T) {
	Convey("Given two items differing only in price scale", t, func() {
		a := model.TrackedItem{ID: "1", CurrentPrice: decimal.RequireFromString("10.0")}
		b := model.TrackedItem{ID: "1", CurrentPrice: decimal.RequireFromString("10")}
		So(a.Equal(b), ShouldBeTrue)

		b.Name = "renamed"
		So(a.Equal(b), ShouldBeFalse)
	})

	Convey("Given an item whose low equals its high", t, func() {
		it := model.TrackedItem{LowestPrice: decimal.NewFromInt(10), HighestPrice: decimal.RequireFromString("10.00")}
		So(it.HasSinglePricePoint(), ShouldBeTrue)
	})
}
