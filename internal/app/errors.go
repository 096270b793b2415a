package service

import "errors"

// Sentinel kinds for session registry errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrTooManySessions = errors.New("session limit reached")
)
