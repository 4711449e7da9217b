package app

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	// ErrInputUnavailable means a required input (anchor, current vector,
	// training series) could not be obtained for an entity.
	ErrInputUnavailable = errors.New("input unavailable")
	ErrNotStarted       = errors.New("service not started")
	ErrNotCached        = errors.New("report not cached")
	ErrInvalidCurrency  = errors.New("unknown currency")
	ErrInvalidBundle    = errors.New("invalid bundle")
)

// Entity error kinds.
const (
	KindInputUnavailable = "input-unavailable"
	KindBackpressure     = "backpressure"
	KindCancelled        = "cancelled"
)

// EntityError ties a pipeline failure to the entity it happened for.
type EntityError struct {
	EntityID string
	Kind     string
	Err      error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("entity %s: %s: %v", e.EntityID, e.Kind, e.Err)
}

func (e *EntityError) Unwrap() error { return e.Err }

func unavailable(id, what string, err error) error {
	return &EntityError{
		EntityID: id,
		Kind:     KindInputUnavailable,
		Err:      fmt.Errorf("%w: %s: %w", ErrInputUnavailable, what, err),
	}
}
