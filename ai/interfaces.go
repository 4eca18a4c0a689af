package ai

import (
	"context"

	"github.com/lattice-works/semdex/embedding"
)

// Generator produces free-form text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateText returns the model's text response for the prompt.
	// The response may be wrapped in markdown code fences; callers that
	// expect structured output are responsible for stripping them.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages the text generator
// and embedding transport, ensuring they share configuration.
type Provider interface {
	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// EmbeddingBackend returns the embedding transport.
	// The returned Backend is safe for concurrent use.
	EmbeddingBackend() embedding.Backend

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
