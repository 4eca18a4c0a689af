package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lattice-works/semdex/ai"
	"github.com/lattice-works/semdex/embedding"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements embedding.Backend over OpenAI-compatible embedding
// APIs. Because the fallback ladder varies the model and API version per
// request, the underlying clients are created lazily and cached per
// (model, version) pair.
type Embedder struct {
	host   string
	token  string
	logger *slog.Logger

	mu      sync.Mutex
	clients map[clientKey]*openai.LLM
}

type clientKey struct {
	model   string
	version embedding.APIVersion
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Embedder{
		host:    config.EmbeddingHost,
		token:   config.Token,
		logger:  slog.Default().With("component", "openai-embedder"),
		clients: make(map[clientKey]*openai.LLM),
	}, nil
}

// NewEmbedder creates a new embedding backend using the provided configuration.
//
// Returns embedding.Backend interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (embedding.Backend, error) {
	return newEmbedder(config)
}

// Embed generates vector embeddings for the request's texts using the
// requested model and API version. Errors are classified into the embedding
// package's sentinel categories so the client can drive its fallback ladder.
//
// The OpenAI-compatible embedding call carries no task hint and no output
// dimension, so req.Task and req.Dimension are not forwarded; the vector
// size is whatever the model produces, and the client validates it against
// the configured dimension after the call.
func (e *Embedder) Embed(ctx context.Context, req embedding.Request) ([][]float32, error) {
	client, err := e.clientFor(req.Model, req.APIVersion)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("generating embeddings",
		"count", len(req.Texts), "model", req.Model, "apiVersion", req.APIVersion,
		"requestedDimension", req.Dimension)

	vectors, err := client.CreateEmbedding(ctx, req.Texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings",
			"count", len(req.Texts), "model", req.Model, "err", err)
		return nil, classifyError(req.Model, err)
	}

	return vectors, nil
}

// clientFor returns a cached client for the pair, creating it on first use.
func (e *Embedder) clientFor(model string, version embedding.APIVersion) (*openai.LLM, error) {
	key := clientKey{model: model, version: version}

	e.mu.Lock()
	defer e.mu.Unlock()

	if client, ok := e.clients[key]; ok {
		return client, nil
	}

	client, err := openai.New(
		openai.WithBaseURL(e.host+"/"+string(version)),
		openai.WithToken(e.token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, err
	}

	e.clients[key] = client
	return client, nil
}

// classifyError maps provider failures onto the embedding package's sentinel
// categories. Unknown failures pass through unclassified, which aborts the
// ladder rather than burning retries on something unrecoverable.
func classifyError(model string, err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "404"),
		strings.Contains(msg, "does not exist"),
		strings.Contains(msg, "unknown model"):
		return fmt.Errorf("%w: %s: %v", embedding.ErrModelUnavailable, model, err)

	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "overloaded"):
		return fmt.Errorf("%w: %v", embedding.ErrTransient, err)
	}

	return err
}
