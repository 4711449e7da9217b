package worker

import "errors"

// ErrPanic wraps a recovered panic from a processor.
var ErrPanic = errors.New("processor panicked")
