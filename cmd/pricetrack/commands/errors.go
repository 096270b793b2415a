package commands

import "errors"

// Sentinel kinds for CLI errors.
var (
	errNoneNormalized = errors.New("no URL could be normalized")
	errNoEmail        = errors.New("no user email: pass --email or set PRICETRACK_EMAIL")
)
