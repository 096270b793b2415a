// Package testbackend is an in-memory stand-in for the remote price tracking
// service. It serves the same four endpoints and reproduces the service's
// status codes and error texts, for tests and local development.
package testbackend

import "time"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithUsers registers users that may track items.
func WithUsers(emails ...string) Option {
	return func(s *Server) {
		for _, e := range emails {
			s.users[e] = &account{}
		}
	}
}

// WithAutoRegister makes unknown emails register on first contact instead
// of answering 404.
func WithAutoRegister(enabled bool) Option {
	return func(s *Server) {
		s.autoRegister = enabled
	}
}

// WithClock sets the time source used for last_checked.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}
