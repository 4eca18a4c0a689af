package enrich

import "errors"

var (
	// ErrGeneratorRequired indicates a nil generator was passed to NewEnricher.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrInvalidBatchSize indicates a non-positive batch size option.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidRetries indicates a negative retry count option.
	ErrInvalidRetries = errors.New("retry count must be non-negative")
)
