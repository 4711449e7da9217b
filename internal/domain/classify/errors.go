package classify

import "errors"

// ErrSeriesUnavailable means the training series could not be decoded.
var ErrSeriesUnavailable = errors.New("training series unavailable")
