// Package segment converts raw document bytes into ordered text chunks.
//
// Extraction walks a fallback ladder: an optional layout-aware converter
// that preserves headings, then plain-text PDF extraction, then raw byte
// decoding. Splitting is two-phase: a structural split on markdown headings,
// then a windowed secondary split of oversized sections into overlapping
// sub-chunks that prefer sentence boundaries as cut points. If the
// structural split finds nothing usable, blank-line paragraph boundaries are
// used instead.
//
// Segmentation never fails on input shape. Empty or whitespace-only input
// yields an empty chunk list.
package segment
