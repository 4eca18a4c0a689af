// Package openai implements the ai contracts over OpenAI-compatible HTTP
// services (OpenAI, Ollama, vLLM, LM Studio, and similar).
//
// The embedding backend keeps one underlying client per (model, apiVersion)
// pair so the fallback ladder can switch candidates without reconfiguration,
// and classifies provider failures into the sentinel categories the ladder
// understands.
package openai
