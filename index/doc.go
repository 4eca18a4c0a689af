// Package index owns the lifecycle of documents inside an external vector
// index: import with conflict backoff and handle resolution, similarity
// search with result normalization, and cascading idempotent deletion.
//
// The external service is assumed to be eventually consistent and loosely
// schematized. The gateway therefore resolves file handles heuristically
// (source-URI match with a most-recent fallback), treats an unreachable
// backend during search as "no results", and cleans up deletion residue
// through an escalating cascade that ends in a full-store scan. Deletion
// never raises; callers distinguish "nothing found" (zero) from "store
// unreachable" (CountUnavailable).
package index
