package repository

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/okian/pricetrack/internal/domain/model"
)

// MemoryStore is an in-memory Store.
//
// Writers serialize on mu and publish an immutable slice through an atomic
// pointer, so readers never block and never observe a half-applied change.
type MemoryStore struct {
	mu       sync.Mutex
	items    atomic.Pointer[[]model.TrackedItem]
	onChange func(size int)
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.publish(nil)
	return s
}

func (s *MemoryStore) publish(items []model.TrackedItem) {
	if items == nil {
		items = []model.TrackedItem{}
	}
	s.items.Store(&items)
}

func (s *MemoryStore) current() []model.TrackedItem {
	return *s.items.Load()
}

func (s *MemoryStore) changed(size int) {
	if s.onChange != nil {
		s.onChange(size)
	}
}

func (s *MemoryStore) Replace(_ context.Context, items []model.TrackedItem) {
	next := slices.Clone(items)

	s.mu.Lock()
	s.publish(next)
	s.mu.Unlock()

	s.changed(len(next))
}

func (s *MemoryStore) Remove(_ context.Context, id model.ItemID) bool {
	s.mu.Lock()
	cur := s.current()
	next := make([]model.TrackedItem, 0, len(cur))
	for _, it := range cur {
		if it.ID != id {
			next = append(next, it)
		}
	}
	removed := len(next) != len(cur)
	if removed {
		s.publish(next)
	}
	s.mu.Unlock()

	if removed {
		s.changed(len(next))
	}
	return removed
}

func (s *MemoryStore) Get(_ context.Context, id model.ItemID) (model.TrackedItem, error) {
	for _, it := range s.current() {
		if it.ID == id {
			return it, nil
		}
	}
	return model.TrackedItem{}, ErrNotFound
}

func (s *MemoryStore) Snapshot(_ context.Context) []model.TrackedItem {
	return slices.Clone(s.current())
}

func (s *MemoryStore) Len(_ context.Context) int {
	return len(s.current())
}
