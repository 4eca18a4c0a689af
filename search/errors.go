package search

import "errors"

var (
	// ErrGatewayRequired indicates a nil index gateway.
	ErrGatewayRequired = errors.New("index gateway is required")

	// ErrCorpusRequired indicates an empty corpus identifier.
	ErrCorpusRequired = errors.New("corpus is required")
)
