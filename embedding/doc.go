// Package embedding maps text to fixed-dimension vectors through a
// provider-agnostic Backend, surviving model and protocol instability.
//
// The Client layers three fallback mechanisms:
//
//   - transient failures retry the same candidate with exponential backoff
//   - "model not found" failures advance an ordered candidate-model ladder
//     without consuming a retry
//   - a ladder that fails entirely with "model not found" switches to the
//     alternate API version and walks the ladder once more
//
// The last successful (model, apiVersion) pair is cached per auth mode and
// tried first on subsequent calls. The cache is a hint: a stale entry costs
// one failed attempt before the ladder self-corrects.
package embedding
