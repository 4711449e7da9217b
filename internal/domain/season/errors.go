package season

import "errors"

// ErrAnchorUnavailable means no season anchor could be derived; analytics are
// unavailable until one is.
var ErrAnchorUnavailable = errors.New("season anchor unavailable")
