// Package repository holds the per-session collection of tracked items.
package repository

import (
	"context"

	"github.com/okian/pricetrack/internal/domain/model"
)

// Store provides read/write access to the displayed collection.
// Order is the order the backend returned and is never re-sorted locally.
type Store interface {
	// Replace swaps the whole collection for items.
	Replace(ctx context.Context, items []model.TrackedItem)

	// Remove deletes every item whose ID equals id and keeps the order of the
	// rest. Returns false if nothing matched.
	Remove(ctx context.Context, id model.ItemID) bool

	// Get returns the item with the given id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id model.ItemID) (model.TrackedItem, error)

	// Snapshot returns a copy of the collection that callers may keep.
	Snapshot(ctx context.Context) []model.TrackedItem

	// Len returns the number of items in the collection.
	Len(ctx context.Context) int
}
