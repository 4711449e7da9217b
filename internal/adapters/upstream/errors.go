package upstream

import "errors"

// Sentinel kinds for fetch errors.
var (
	ErrRequest = errors.New("upstream request failed")
	ErrStatus  = errors.New("upstream returned an error status")
	ErrParse   = errors.New("upstream page could not be parsed")
)
