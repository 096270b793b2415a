package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/pricetrack/internal/adapters/repository"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func item(id, name string) model.TrackedItem {
	p := decimal.NewFromInt(10)
	return model.TrackedItem{ID: model.ItemID(id), Name: name, CurrentPrice: p, LowestPrice: p, HighestPrice: p}
}

func ids(items []model.TrackedItem) []model.ItemID {
	out := make([]model.ItemID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		var sizes []int
		s := repository.NewMemoryStore(repository.WithChangeHook(func(n int) { sizes = append(sizes, n) }))

		Convey("Then it reports no items", func() {
			So(s.Len(ctx), ShouldEqual, 0)
			So(s.Snapshot(ctx), ShouldBeEmpty)
			_, err := s.Get(ctx, "1")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When a collection is loaded", func() {
			s.Replace(ctx, []model.TrackedItem{item("3", "c"), item("1", "a"), item("2", "b")})

			Convey("Then server order is kept", func() {
				So(ids(s.Snapshot(ctx)), ShouldResemble, []model.ItemID{"3", "1", "2"})
				So(sizes, ShouldResemble, []int{3})
			})

			Convey("And removing one item keeps the rest in order", func() {
				So(s.Remove(ctx, "1"), ShouldBeTrue)
				So(ids(s.Snapshot(ctx)), ShouldResemble, []model.ItemID{"3", "2"})
				So(sizes, ShouldResemble, []int{3, 2})
			})

			Convey("And removing an unknown id changes nothing", func() {
				So(s.Remove(ctx, "99"), ShouldBeFalse)
				So(s.Len(ctx), ShouldEqual, 3)
				So(sizes, ShouldResemble, []int{3})
			})

			Convey("And Get finds items by id", func() {
				it, err := s.Get(ctx, "2")
				So(err, ShouldBeNil)
				So(it.Name, ShouldEqual, "b")
			})

			Convey("And snapshots are detached from the store", func() {
				snap := s.Snapshot(ctx)
				snap[0].Name = "mutated"
				again := s.Snapshot(ctx)
				So(again[0].Name, ShouldEqual, "c")
			})

			Convey("And replacing with an empty response clears it", func() {
				s.Replace(ctx, nil)
				So(s.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the caller mutates the slice it passed to Replace", func() {
			in := []model.TrackedItem{item("1", "a")}
			s.Replace(ctx, in)
			in[0].Name = "changed"

			Convey("Then the store is unaffected", func() {
				it, _ := s.Get(ctx, "1")
				So(it.Name, ShouldEqual, "a")
			})
		})
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	Convey("Given concurrent readers and writers", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		s.Replace(ctx, []model.TrackedItem{item("1", "a"), item("2", "b")})

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				s.Replace(ctx, []model.TrackedItem{item("1", "a"), item("2", "b")})
			}()
			go func() {
				defer wg.Done()
				_ = s.Snapshot(ctx)
			}()
		}
		wg.Wait()

		Convey("Then the final state is consistent", func() {
			So(s.Len(ctx), ShouldEqual, 2)
		})
	})
}
