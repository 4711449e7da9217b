package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("preference not set")
	ErrInvalidValue = errors.New("invalid preference value")
)
