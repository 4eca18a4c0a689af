// Package search exposes the caller-facing retrieval API: similarity search
// over an indexed corpus and formatting of ranked excerpts into a bounded
// context string.
package search
