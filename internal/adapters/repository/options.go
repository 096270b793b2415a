// Package repository holds the per-session collection of tracked items.
package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithChangeHook registers fn to be called with the new collection size after
// every mutation. fn runs outside the store lock.
func WithChangeHook(fn func(size int)) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.onChange = fn
		}
	}
}
