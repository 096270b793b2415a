// Package tracking keeps a user's tracked-item collection in step with the
// remote tracking service.
package tracking

import (
	"github.com/okian/pricetrack/internal/adapters/repository"
	"github.com/okian/pricetrack/internal/domain/inflight"
	"github.com/okian/pricetrack/pkg/logger"
)

// Option applies a configuration option to the Synchronizer.
type Option func(*Synchronizer)

// WithStore sets the collection store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Synchronizer) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGate sets the single-flight gate. Sharing one gate between
// synchronizers gives per-user single-flight across all of them.
func WithGate(gate inflight.Gate) Option {
	return func(s *Synchronizer) {
		if gate != nil {
			s.gate = gate
		}
	}
}

// WithLogger sets a custom logger for the synchronizer.
func WithLogger(l logger.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}
