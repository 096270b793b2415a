package repository

import "errors"

// Sentinel kinds for collection errors.
var ErrNotFound = errors.New("tracked item not found")
