package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrMissingID   = errors.New("missing player id")
	ErrMissingCode = errors.New("missing currency code")
)
