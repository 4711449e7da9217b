package compare

import "errors"

var (
	// ErrAgeUnknown is returned when an entity has no usable current age.
	ErrAgeUnknown = errors.New("current age unknown")
	// ErrInvalidID is returned for a non-numeric entity id.
	ErrInvalidID = errors.New("invalid entity id")
	// ErrNoEntities is returned when an id list is empty.
	ErrNoEntities = errors.New("no entity ids")
	// ErrTooManyEntities is returned when an id list exceeds the limit.
	ErrTooManyEntities = errors.New("too many entities")
)
