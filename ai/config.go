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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API,
	// without a version path suffix (the embedding client selects the
	// protocol version per call).
	// Example: "http://localhost:11434" for a local OpenAI-compatible server
	EmbeddingHost string

	// GeneratorHost is the base URL for the text-generation service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	GeneratorHost string

	// GeneratorModel is the model identifier used for context summaries.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	GeneratorModel string

	// Token is the API key. Local OpenAI-compatible services that don't
	// require authentication accept any non-empty value.
	// Default: "none"
	Token string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the text-generation service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithGeneratorModel sets the generator model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithToken sets the API key.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434"
	return &Config{
		EmbeddingHost:  defaultHost,
		GeneratorHost:  defaultHost + "/v1",
		GeneratorModel: "qwen2.5:3b",
		Token:          "none",
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. The generator
// host gets the /v1 suffix required by OpenAI-compatible chat APIs; the
// embedding host is stripped of any version suffix because the embedding
// client appends one per call.
func (c *Config) Normalize() {
	if c.GeneratorHost != "" && !strings.HasSuffix(c.GeneratorHost, "/v1") {
		c.GeneratorHost = strings.TrimSuffix(c.GeneratorHost, "/")
		c.GeneratorHost = c.GeneratorHost + "/v1"
	}
	if c.EmbeddingHost != "" {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/v1")
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/v1beta")
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	return nil
}
