// Package ai defines the provider-neutral contracts for the AI services the
// pipeline depends on: text generation for context summaries and the raw
// embedding transport consumed by the embedding client.
//
// Concrete implementations live in subpackages: openai for OpenAI-compatible
// HTTP services and mock for deterministic test doubles.
package ai
