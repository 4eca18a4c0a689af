package mock

import (
	"context"
	"sync"

	"github.com/lattice-works/semdex/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateTextFunc is called by GenerateText if set.
	// If nil, returns Response unconditionally.
	GenerateTextFunc func(ctx context.Context, prompt string) (string, error)

	// Response is the canned reply used when GenerateTextFunc is nil.
	Response string

	mu        sync.Mutex
	callCount int
	prompts   []string
}

var _ ai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock generator that returns the given response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// GenerateText records the prompt and returns the injected or canned response.
func (m *MockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt)
	}
	return m.Response, nil
}

// CallCount returns the number of times GenerateText was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns a copy of every prompt received.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reset clears recorded state and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.GenerateTextFunc = nil
}
