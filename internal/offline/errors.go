package offline

import "errors"

// Sentinel kinds for offline runs.
var (
	ErrBundle = errors.New("bundle unreadable")
	ErrFormat = errors.New("unknown output format")
)
