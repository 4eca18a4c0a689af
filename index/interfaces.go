package index

import (
	"context"

	"github.com/lattice-works/semdex/core"
)

// Property names under which chunk attributes live in the index store.
// Backends are loosely schematized; these are the names this system writes,
// not a guarantee about what an arbitrary store contains.
const (
	PropContent     = "content"
	PropHeading     = "heading"
	PropPageNumber  = "pageNumber"
	PropSourceURI   = "originalSourceUri"
	PropFileID      = "fileId"
	PropDisplayName = "displayName"
)

// FileInfo describes one imported file as the index service reports it.
type FileInfo struct {
	// Name is the opaque backend handle, e.g. "files/42".
	Name        string
	DisplayName string
	SourceURI   string
}

// Hit is one raw similarity match from the index service.
type Hit struct {
	Content     string
	Heading     string
	PageNumber  int
	SourceURI   string
	DisplayName string

	// Distance is the reported vector distance (smaller is closer).
	Distance float64

	// Score is a native 0-1 relevance score when the backend reports one;
	// HasScore distinguishes a real zero from an absent score.
	Score    float64
	HasScore bool
}

// StoredObject is one chunk-level entry as seen through the direct store,
// with every property rendered as a string.
type StoredObject struct {
	ID         string
	Properties map[string]string
}

// FileService is the file-level surface of the external vector index.
type FileService interface {
	// ImportFile submits a chunked, embedded document for indexing under
	// the corpus. Returns ErrConflict when the backend reports a busy or
	// concurrent operation.
	ImportFile(ctx context.Context, corpus, sourceURI, displayName string, chunks []core.Chunk, vectors [][]float32) error

	// ListFiles returns the backend's file bookkeeping for the corpus,
	// oldest first.
	ListFiles(ctx context.Context, corpus string) ([]FileInfo, error)

	// DeleteFile removes the file handle from the backend's bookkeeping.
	// Returns ErrNotFound when the handle does not exist.
	DeleteFile(ctx context.Context, handle string) error

	// Query runs a similarity search. Hits with distance above maxDistance
	// are excluded by the backend.
	Query(ctx context.Context, corpus string, vector []float32, topK int, maxDistance float64) ([]Hit, error)
}

// DirectStore is the chunk-level surface of the index's underlying store,
// used for residual cleanup when file-level deletion leaves orphans.
// An unreachable store yields ErrUnavailable.
type DirectStore interface {
	// DeleteByProperty removes every object whose property equals value
	// exactly, returning the number deleted.
	DeleteByProperty(ctx context.Context, property, value string) (int, error)

	// Properties lists the property names present in the store's schema.
	Properties(ctx context.Context) ([]string, error)

	// ScanObjects fetches every object with its stringified properties.
	ScanObjects(ctx context.Context) ([]StoredObject, error)

	// DeleteObjects removes the objects by ID, returning the number deleted.
	DeleteObjects(ctx context.Context, ids []string) (int, error)
}
