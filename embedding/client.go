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


package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lattice-works/semdex/retry"
)

const (
	// DefaultDimension is the vector size expected from the provider.
	DefaultDimension = 768
	// DefaultMaxBatchSize bounds texts per provider call.
	DefaultMaxBatchSize = 100
	// DefaultMaxAttempts bounds retries of a single candidate on transient errors.
	DefaultMaxAttempts = 3
	// DefaultPreferredModel is tried first unless the auth mode demotes it.
	DefaultPreferredModel = "gemini-embedding-001"
	// DefaultStableModel is broadly available under API-key auth and is
	// promoted to the front of the ladder in that mode.
	DefaultStableModel = "text-embedding-004"
)

// defaultFallbackModels are always appended to the candidate ladder.
var defaultFallbackModels = []string{"text-embedding-004", "embedding-001"}

// Config holds the fallback ladder configuration for a Client.
type Config struct {
	// PreferredModel is the operator-configured first choice.
	PreferredModel string

	// StableModel is promoted to the front of the ladder under AuthAPIKey.
	StableModel string

	// FallbackModels are hard-coded alternatives appended to the ladder.
	FallbackModels []string

	// Dimension is the fixed vector size for this deployment.
	Dimension int

	// MaxBatchSize bounds texts per provider call.
	MaxBatchSize int

	// MaxAttempts bounds transient retries per candidate.
	MaxAttempts int

	// BackoffBase is the unit for exponential backoff (base * 2^attempt).
	BackoffBase time.Duration

	// AuthMode selects the availability profile and the hot-cache slot.
	AuthMode AuthMode
}

// DefaultConfig returns a Config with production defaults under API-key auth.
func DefaultConfig() *Config {
	return &Config{
		PreferredModel: DefaultPreferredModel,
		StableModel:    DefaultStableModel,
		FallbackModels: append([]string(nil), defaultFallbackModels...),
		Dimension:      DefaultDimension,
		MaxBatchSize:   DefaultMaxBatchSize,
		MaxAttempts:    DefaultMaxAttempts,
		BackoffBase:    time.Second,
		AuthMode:       AuthAPIKey,
	}
}

// Client maps text to fixed-dimension vectors, surviving provider and model
// instability through a layered fallback: last-successful pair first, then
// every candidate model under the current API version, then the alternate
// version. Safe for concurrent use.
type Client struct {
	backend Backend
	config  *Config
	logger  *slog.Logger
	hot     *modeCache
	sleep   func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	badVersions map[APIVersion]bool
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithHotCache replaces the process-wide last-success cache.
// Used by tests to isolate state.
func WithHotCache(cache *modeCache) Option {
	return func(c *Client) error {
		if cache != nil {
			c.hot = cache
		}
		return nil
	}
}

// NewHotCache creates an isolated last-success cache for WithHotCache.
func NewHotCache() *modeCache {
	return newModeCache()
}

// withSleep replaces the backoff sleeper; tests use it to avoid real delays.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) error {
		c.sleep = fn
		return nil
	}
}

// NewClient creates an embedding client over the given backend.
func NewClient(backend Backend, config *Config, opts ...Option) (*Client, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Dimension <= 0 {
		config.Dimension = DefaultDimension
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultMaxBatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = time.Second
	}

	c := &Client{
		backend:     backend,
		config:      config,
		logger:      slog.Default().With("component", "embedding-client"),
		hot:         defaultHotCache,
		sleep:       retry.Sleep,
		badVersions: make(map[APIVersion]bool),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Dimension returns the configured vector size.
func (c *Client) Dimension() int {
	return c.config.Dimension
}

// EmbedDocuments embeds texts for indexing, batching provider calls.
// Returns one vector per input text, in input order. A batch that exhausts
// every fallback aborts the whole call; partial results are never returned.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embedAll(ctx, texts, TaskDocument)
}

// EmbedQuery embeds a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embedAll(ctx, []string{text}, TaskQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) embedAll(ctx context.Context, texts []string, task Task) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.config.MaxBatchSize {
		end := start + c.config.MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := c.embedBatch(ctx, texts[start:end], task)
		if err != nil {
			return nil, err
		}
		result = append(result, vectors...)
	}

	return result, nil
}

// embedBatch walks the fallback ladder for one batch.
func (c *Client) embedBatch(ctx context.Context, texts []string, task Task) ([][]float32, error) {
	mode := c.config.AuthMode

	// Hot path: last pair that worked for this auth mode.
	if hot, ok := c.hot.get(mode); ok {
		vectors, err := c.tryCandidate(ctx, texts, task, hot.Model, hot.Version)
		if err == nil {
			return vectors, nil
		}
		c.logger.Debug("cached model failed, walking fallback ladder",
			"model", hot.Model, "apiVersion", hot.Version, "err", err)
		if IsModelUnavailable(err) {
			c.hot.clear(mode)
		}
	}

	var lastErr error
	for _, version := range c.candidateVersions() {
		sawUnavailable := false

		for _, model := range c.candidateModels() {
			vectors, err := c.tryCandidate(ctx, texts, task, model, version)
			if err == nil {
				c.hot.put(mode, model, version)
				return vectors, nil
			}
			lastErr = err

			if IsModelUnavailable(err) {
				// Advance the ladder without consuming a retry.
				c.logger.Debug("model unavailable, trying next candidate",
					"model", model, "apiVersion", version)
				sawUnavailable = true
				continue
			}

			// Transient retries already exhausted, or a fatal failure.
			return nil, err
		}

		if !sawUnavailable {
			break
		}
		c.markVersionUnsupported(version)
	}

	return nil, fmt.Errorf("%w: %v", ErrNoModelAvailable, lastErr)
}

// tryCandidate calls one (model, version) pair with transient-retry backoff.
func (c *Client) tryCandidate(ctx context.Context, texts []string, task Task, model string, version APIVersion) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		vectors, err := c.backend.Embed(ctx, Request{
			Texts:      texts,
			Model:      model,
			APIVersion: version,
			Task:       task,
			Dimension:  c.config.Dimension,
		})
		if err == nil {
			if err := c.validate(texts, vectors); err != nil {
				return nil, err
			}
			return vectors, nil
		}
		lastErr = err

		if IsModelUnavailable(err) {
			return nil, err
		}
		if !IsTransient(err) {
			return nil, err
		}

		c.logger.Warn("transient embedding failure",
			"model", model, "apiVersion", version, "attempt", attempt+1, "err", err)

		if attempt == c.config.MaxAttempts-1 {
			break
		}
		// Exponential backoff: base * 2^attempt.
		if err := c.sleep(ctx, c.config.BackoffBase<<uint(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// validate enforces the output contract: one vector per text, each of the
// configured dimension.
func (c *Client) validate(texts []string, vectors [][]float32) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: expected %d, received %d", ErrCountMismatch, len(texts), len(vectors))
	}
	for i, vector := range vectors {
		if len(vector) != c.config.Dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vector), c.config.Dimension)
		}
	}
	return nil
}

// candidateModels builds the ordered, deduplicated model ladder.
// Under API-key auth the broadly-available model leads, since the preferred
// model frequently requires service-identity entitlements.
func (c *Client) candidateModels() []string {
	ordered := make([]string, 0, len(c.config.FallbackModels)+2)
	if c.config.AuthMode == AuthAPIKey && c.config.StableModel != "" {
		ordered = append(ordered, c.config.StableModel)
	}
	if c.config.PreferredModel != "" {
		ordered = append(ordered, c.config.PreferredModel)
	}
	ordered = append(ordered, c.config.FallbackModels...)

	seen := make(map[string]bool, len(ordered))
	models := ordered[:0]
	for _, model := range ordered {
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true
		models = append(models, model)
	}
	return models
}

// candidateVersions orders API versions, deprioritizing versions previously
// marked "model not found". When every version is marked, the exclusion set
// resets so both are retried.
func (c *Client) candidateVersions() []APIVersion {
	all := []APIVersion{APIVersionV1, APIVersionV1Beta}

	c.mu.Lock()
	defer c.mu.Unlock()

	allMarked := true
	for _, version := range all {
		if !c.badVersions[version] {
			allMarked = false
			break
		}
	}
	if allMarked {
		c.badVersions = make(map[APIVersion]bool)
		return all
	}

	ordered := make([]APIVersion, 0, len(all))
	for _, version := range all {
		if !c.badVersions[version] {
			ordered = append(ordered, version)
		}
	}
	for _, version := range all {
		if c.badVersions[version] {
			ordered = append(ordered, version)
		}
	}
	return ordered
}

func (c *Client) markVersionUnsupported(version APIVersion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.badVersions[version] = true
}
