package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/lattice-works/semdex/embedding"
)

// MockBackend is a test double for embedding.Backend.
// It allows custom behavior injection via function fields.
type MockBackend struct {
	// EmbedFunc is called by Embed if set.
	// If nil, uses default deterministic behavior.
	EmbedFunc func(ctx context.Context, req embedding.Request) ([][]float32, error)

	mu        sync.Mutex
	callCount int
	requests  []embedding.Request
}

var _ embedding.Backend = (*MockBackend)(nil)

// NewMockBackend creates a mock backend with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Embed generates deterministic embeddings based on text hashes, at the
// dimension the request asks for.
func (m *MockBackend) Embed(ctx context.Context, req embedding.Request) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, req)
	}

	dim := req.Dimension
	if dim <= 0 {
		dim = embedding.DefaultDimension
	}

	vectors := make([][]float32, len(req.Texts))
	for i, text := range req.Texts {
		vectors[i] = generateDeterministicVector(text, dim)
	}
	return vectors, nil
}

// CallCount returns the number of times Embed was called.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of every request received.
func (m *MockBackend) Requests() []embedding.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]embedding.Request(nil), m.requests...)
}

// Reset clears recorded state and injected behavior.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.requests = nil
	m.EmbedFunc = nil
}

// generateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Simple pseudo-random generation based on seed and index
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	// Normalize to unit vector
	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		norm := float32(1.0) / float32(sumSquares)
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
