// Package enrich attaches contextual summaries to chunks before indexing.
//
// Chunks are summarized in batches of twenty through a single LLM prompt
// that requests a strict JSON array of summaries. Responses degrade
// gracefully: code fences are stripped, length mismatches are padded or
// truncated, unparseable responses are mined for well-formed quoted strings,
// and a batch whose call fails outright, after bounded linear-backoff
// retries, falls back to empty summaries. A missing summary is degraded
// retrieval quality, never a pipeline failure.
package enrich
