// Package inflight tracks which keys have an operation running, giving
// callers single-flight gating: at most one holder per key at a time.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Gate records in-flight keys.
type Gate interface {
	// Acquire atomically marks key as in flight. It returns false when key is
	// already held (or the gate is full) and the caller must not proceed.
	Acquire(ctx context.Context, key string) bool

	// Release clears key. Releasing a key that is not held is a no-op, so it
	// is safe to call from a deferred finalizer on every exit path.
	Release(ctx context.Context, key string)

	// Active reports whether key is currently held.
	Active(ctx context.Context, key string) bool

	Size() int64
}

// inMemoryGate implements Gate with a mutex-guarded set.
// maxKeys <= 0 means unbounded. A full gate refuses new keys rather than
// evicting held ones: dropping a held key would let two operations overlap.
type inMemoryGate struct {
	mu      sync.Mutex
	held    map[string]struct{}
	maxKeys int
	size    atomic.Int64
}

// NewInMemoryGate creates a gate with configuration options.
func NewInMemoryGate(opts ...Option) Gate {
	g := &inMemoryGate{}

	for _, opt := range opts {
		opt(g)
	}

	g.held = make(map[string]struct{})
	return g
}

func (g *inMemoryGate) Acquire(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return false
	}
	if g.maxKeys > 0 && len(g.held) >= g.maxKeys {
		return false
	}
	g.held[key] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *inMemoryGate) Release(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		delete(g.held, key)
		g.size.Add(-1)
	}
}

func (g *inMemoryGate) Active(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, busy := g.held[key]
	return busy
}

// Size returns the number of keys currently held.
func (g *inMemoryGate) Size() int64 {
	return g.size.Load()
}
