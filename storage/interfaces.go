package storage

import (
	"context"

	"github.com/lattice-works/semdex/core"
)

// DocumentRepository provides operations for managing tracked documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocument adds a document to storage.
	// Generates a new ID from sequence when Id is 0 and sets CreatedAt and
	// UpdatedAt. Returns the document with the generated ID populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// UpdateDocument updates an existing document.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// DeleteDocument removes a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing ones).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// ListDocuments returns every document in the corpus, ordered by ID.
	// An empty corpus matches all documents.
	ListDocuments(ctx context.Context, corpus string) ([]*core.Document, error)

	// Close closes the repository and releases resources.
	Close() error
}

// ObjectStore reads uploaded document content by URI.
type ObjectStore interface {
	// DownloadBytes fetches the full object content.
	DownloadBytes(ctx context.Context, uri string) ([]byte, error)

	// ContentType reports the stored content type for the object, or ""
	// when the store doesn't track one.
	ContentType(ctx context.Context, uri string) (string, error)
}
