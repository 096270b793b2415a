package marketplace

import "errors"

// Sentinel kinds for canonicalization failures. All of them are recoverable
// by the caller: they describe bad user input, never a broken process.
var (
	ErrInvalidURL             = errors.New("invalid url")
	ErrUnsupportedMarketplace = errors.New("unsupported marketplace")
	ErrIdentifierNotFound     = errors.New("product identifier not found")
)
