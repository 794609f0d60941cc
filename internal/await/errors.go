package await

import "errors"

var (
	ErrBusy     = errors.New("another operation is still pending")
	ErrPanicked = errors.New("operation panicked")
)
