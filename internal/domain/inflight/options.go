package inflight

// Option applies a configuration option to the in-memory gate.
type Option func(*inMemoryGate)

// WithMaxKeys bounds how many distinct keys may be held at once.
// If maxKeys > 0: Acquire refuses new keys once full.
// If maxKeys <= 0: unbounded.
func WithMaxKeys(maxKeys int) Option {
	return func(g *inMemoryGate) {
		g.maxKeys = maxKeys
	}
}
