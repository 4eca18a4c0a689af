// Copyright 2026 Lattice Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/lattice-works/semdex/ai"
	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/retry"
)

const (
	// DefaultBatchSize is the number of chunks summarized per LLM call.
	DefaultBatchSize = 20
	// DefaultMaxBodyLen caps the characters of each chunk body embedded in
	// the prompt.
	DefaultMaxBodyLen = 1000
	// DefaultMaxRetries bounds re-calls of a failed batch.
	DefaultMaxRetries = 2
)

// Enricher attaches a short contextual summary to each chunk via batched
// LLM calls. Enrichment is strictly best-effort: response-shape problems
// degrade to empty summaries and a failed batch never blocks indexing.
type Enricher struct {
	generator  ai.Generator
	batchSize  int
	maxBodyLen int
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher) error

// WithBatchSize sets the number of chunks per LLM call.
func WithBatchSize(size int) Option {
	return func(e *Enricher) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		e.batchSize = size
		return nil
	}
}

// WithMaxRetries sets how many times a failed batch call is retried.
func WithMaxRetries(retries int) Option {
	return func(e *Enricher) error {
		if retries < 0 {
			return ErrInvalidRetries
		}
		e.maxRetries = retries
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// withBackoff shortens the retry delay; tests use it to avoid real waits.
func withBackoff(d time.Duration) Option {
	return func(e *Enricher) error {
		e.backoff = d
		return nil
	}
}

// NewEnricher creates an enricher over the given generator.
func NewEnricher(generator ai.Generator, opts ...Option) (*Enricher, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	e := &Enricher{
		generator:  generator,
		batchSize:  DefaultBatchSize,
		maxBodyLen: DefaultMaxBodyLen,
		maxRetries: DefaultMaxRetries,
		backoff:    time.Second,
		logger:     slog.Default().With("component", "enricher"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Enrich sets ContextSummary and EnrichedContent on every chunk, in place.
// Summaries may be empty when the model fails or returns garbage; the only
// error returned is a dead caller context.
func (e *Enricher) Enrich(ctx context.Context, documentName string, chunks []core.Chunk) error {
	for start := 0; start < len(chunks); start += e.batchSize {
		end := start + e.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		summaries, err := e.enrichBatch(ctx, documentName, chunks[start:end])
		if err != nil {
			return err
		}
		for i := range chunks[start:end] {
			applySummary(&chunks[start+i], summaries[i])
		}
	}
	return nil
}

// enrichBatch obtains one summary per chunk of the batch. The degradation
// ladder: parse problems are absorbed by parseSummaries, call failures are
// retried with linear backoff, and exhaustion yields empty summaries.
func (e *Enricher) enrichBatch(ctx context.Context, documentName string, batch []core.Chunk) ([]string, error) {
	prompt := buildBatchPrompt(documentName, batch, e.maxBodyLen)

	var response string
	err := retry.WithLinearBackoff(ctx, func() error {
		var callErr error
		response, callErr = e.generator.GenerateText(ctx, prompt)
		return callErr
	}, e.maxRetries+1, e.backoff)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("enrichment batch failed, continuing with empty summaries",
			"document", documentName, "batch", len(batch), "err", err)
		return make([]string, len(batch)), nil
	}

	return parseSummaries(response, len(batch)), nil
}

// applySummary writes the summary onto the chunk and derives the enriched
// content used for embedding and indexing.
func applySummary(chunk *core.Chunk, summary string) {
	chunk.ContextSummary = summary
	if summary == "" {
		chunk.EnrichedContent = chunk.Content
		return
	}
	chunk.EnrichedContent = "Context: " + summary + "\nContent: " + chunk.Content
}
