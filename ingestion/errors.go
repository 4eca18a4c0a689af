package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired indicates a nil document repository.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrObjectStoreRequired indicates a nil object store.
	ErrObjectStoreRequired = errors.New("object store is required")

	// ErrSegmenterRequired indicates a nil segmenter.
	ErrSegmenterRequired = errors.New("segmenter is required")

	// ErrEnricherRequired indicates a nil enricher.
	ErrEnricherRequired = errors.New("enricher is required")

	// ErrGatewayRequired indicates a nil index gateway.
	ErrGatewayRequired = errors.New("index gateway is required")

	// ErrNoChunks indicates segmentation produced nothing to index.
	ErrNoChunks = errors.New("segmentation produced no chunks")
)
