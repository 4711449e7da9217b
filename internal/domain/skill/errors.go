package skill

import "errors"

// Sentinel errors for skill parsing.
var (
	ErrUnknownSkill     = errors.New("unknown skill")
	ErrIncompleteVector = errors.New("incomplete skill vector")
)
