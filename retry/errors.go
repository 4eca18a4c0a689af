package retry

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
