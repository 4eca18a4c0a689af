package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus int

const (
	// StatusPending means the document is recorded but not yet processed.
	StatusPending DocumentStatus = iota + 1
	// StatusProcessing means a background ingestion job is running.
	StatusProcessing
	// StatusReady means the document is indexed and searchable.
	StatusReady
	// StatusError means ingestion failed; ErrorDetail holds the diagnostic.
	StatusError
)

// String returns the lowercase name of the status.
func (s DocumentStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Valid reports whether the status is one of the defined values.
func (s DocumentStatus) Valid() bool {
	return s >= StatusPending && s <= StatusError
}

// Chunk is a contiguous span of extracted document text, the unit of
// indexing and retrieval. Created by the segmenter, enriched once by the
// enricher, then read-only for embedding and indexing.
type Chunk struct {
	Content         string
	Heading         string // nearest enclosing structural heading, empty if none
	PageNumber      int    // 1-based page in the source document, 0 if unknown
	CharStart       int    // offset into the extracted text
	CharEnd         int    // exclusive end offset; always > CharStart
	ContextSummary  string // generated background sentence(s), empty until enriched
	EnrichedContent string // Content prefixed with ContextSummary when present
}

// EmbedText returns the text that should be embedded for this chunk:
// the enriched content when enrichment produced one, else the raw content.
func (c *Chunk) EmbedText() string {
	if c.EnrichedContent != "" {
		return c.EnrichedContent
	}
	return c.Content
}

// Document is one uploaded source file tracked through ingestion.
type Document struct {
	Id           ID
	Name         string // display name, typically the original filename
	SourceURI    string // location in object storage
	CorpusRef    string // target index collection identifier
	Status       DocumentStatus
	IndexFileRef string // opaque handle returned by the index backend after import
	ErrorDetail  string // truncated diagnostic when Status == StatusError
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RetrievedChunk is one normalized similarity-search hit.
type RetrievedChunk struct {
	Content      string
	DocumentName string
	Heading      string
	SourceURI    string
	PageNumber   int
	Similarity   float32 // 0-1, derived from a native score or 1-distance
}
