package embedding

import "errors"

var (
	// ErrBackendRequired is returned when a backend is not provided.
	ErrBackendRequired = errors.New("embedding backend required")

	// ErrModelUnavailable classifies "model or version not found" failures.
	// These advance the fallback ladder instead of consuming a retry.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrTransient classifies rate limits, timeouts, and momentary outages.
	// These are retried with exponential backoff against the same candidate.
	ErrTransient = errors.New("transient embedding failure")

	// ErrNoModelAvailable is the hard failure after every candidate model
	// has been tried under every API version.
	ErrNoModelAvailable = errors.New("no embedding model available")

	// ErrCountMismatch indicates the backend returned a different number of
	// vectors than texts submitted.
	ErrCountMismatch = errors.New("embedding count mismatch")

	// ErrDimensionMismatch indicates a returned vector does not have the
	// configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// IsModelUnavailable reports whether err is classified as a missing
// model/version capability.
func IsModelUnavailable(err error) bool {
	return errors.Is(err, ErrModelUnavailable)
}

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
