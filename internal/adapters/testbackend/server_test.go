package testbackend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pricetrack/internal/adapters/testbackend"
	"github.com/okian/pricetrack/internal/adapters/tracker"
	"github.com/okian/pricetrack/internal/domain/marketplace"
)

const email = "user@example.com"

func TestServer(t *testing.T) {
	Convey("Given a fake service with one user", t, func() {
		ctx := context.Background()
		now := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
		fake := testbackend.New(testbackend.WithUsers(email), testbackend.WithClock(func() time.Time { return now }))
		srv := httptest.NewServer(fake.Handler())
		defer srv.Close()
		c := tracker.New(srv.URL)

		Convey("When the user lists before adding anything", func() {
			resp, err := c.ListItems(ctx, email)

			Convey("Then an empty items array is returned", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Items, ShouldBeEmpty)
			})
		})

		Convey("When an Amazon product is submitted", func() {
			resp, err := c.Submit(ctx, marketplace.Amazon, "https://www.amazon.com/dp/B08N5WRWNW", email)
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			list, err := c.ListItems(ctx, email)

			Convey("Then it is listed with a single price point", func() {
				So(err, ShouldBeNil)
				So(len(list.Items), ShouldEqual, 1)
				it := list.Items[0]
				So(it.ID, ShouldNotBeEmpty)
				So(it.URL, ShouldEqual, "https://www.amazon.com/dp/B08N5WRWNW")
				So(it.HasSinglePricePoint(), ShouldBeTrue)
				So(it.CurrentPrice.GreaterThanOrEqual(decimal.NewFromInt(5)), ShouldBeTrue)
				So(it.LastChecked.Valid, ShouldBeTrue)
				So(it.LastChecked.Time.Equal(now), ShouldBeTrue)
			})

			Convey("And submitting it again is a duplicate entry", func() {
				again, err := c.Submit(ctx, marketplace.Amazon, "https://www.amazon.com/dp/B08N5WRWNW", email)
				So(err, ShouldBeNil)
				So(again.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(again.Message, ShouldContainSubstring, "Duplicate entry")
			})

			Convey("And a price change widens the range", func() {
				id := list.Items[0].ID
				So(fake.SetPrice(email, id, decimal.NewFromInt(1)), ShouldBeTrue)
				after, _ := c.ListItems(ctx, email)
				So(after.Items[0].LowestPrice.Equal(decimal.NewFromInt(1)), ShouldBeTrue)
				So(after.Items[0].HasSinglePricePoint(), ShouldBeFalse)
			})

			Convey("And it can be deleted", func() {
				del, err := c.Delete(ctx, list.Items[0].Wire(), email)
				So(err, ShouldBeNil)
				So(del.OK(), ShouldBeTrue)
				So(fake.Items(email), ShouldBeEmpty)

				missing, _ := c.Delete(ctx, list.Items[0].Wire(), email)
				So(missing.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a URL is sent to the wrong marketplace route", func() {
			resp, err := c.Submit(ctx, marketplace.Amazon, "https://ebay.com/itm/1", email)

			Convey("Then it is a validation failure", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(resp.Message, ShouldNotBeEmpty)
			})
		})

		Convey("When an unknown user calls", func() {
			list, _ := c.ListItems(ctx, "ghost@example.com")
			sub, _ := c.Submit(ctx, marketplace.Ebay, "https://ebay.com/itm/1", "ghost@example.com")

			Convey("Then the service answers 404", func() {
				So(list.StatusCode, ShouldEqual, http.StatusNotFound)
				So(sub.StatusCode, ShouldEqual, http.StatusNotFound)
				So(sub.Message, ShouldEqual, "User not found")
			})
		})

		Convey("When a failure is queued", func() {
			fake.FailNext(tracker.PathEbaySubmit, http.StatusInternalServerError, "")
			first, _ := c.Submit(ctx, marketplace.Ebay, "https://ebay.com/itm/1", email)
			second, _ := c.Submit(ctx, marketplace.Ebay, "https://ebay.com/itm/1", email)

			Convey("Then it applies exactly once", func() {
				So(first.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(first.Message, ShouldBeEmpty)
				So(second.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})

	Convey("Given auto-registration", t, func() {
		fake := testbackend.New(testbackend.WithAutoRegister(true))
		srv := httptest.NewServer(fake.Handler())
		defer srv.Close()

		resp, err := tracker.New(srv.URL).ListItems(context.Background(), "new@example.com")

		Convey("Then unknown users get an empty collection", func() {
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
