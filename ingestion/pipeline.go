// Copyright 2026 Lattice Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/enrich"
	"github.com/lattice-works/semdex/index"
	"github.com/lattice-works/semdex/segment"
	"github.com/lattice-works/semdex/storage"
)

// errorDetailLimit bounds the diagnostic stored on a failed document.
const errorDetailLimit = 500

// Pipeline orchestrates document ingestion. Submitted documents are
// processed as independent background jobs: download, segment, enrich,
// import, with status transitions recorded in the repository along the way.
type Pipeline struct {
	documents storage.DocumentRepository
	objects   storage.ObjectStore
	segmenter *segment.Segmenter
	enricher  *enrich.Enricher
	gateway   *index.Gateway

	pool   *ants.Pool
	wg     sync.WaitGroup
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent document jobs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given collaborators.
func NewPipeline(
	documents storage.DocumentRepository,
	objects storage.ObjectStore,
	segmenter *segment.Segmenter,
	enricher *enrich.Enricher,
	gateway *index.Gateway,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if objects == nil {
		return nil, ErrObjectStoreRequired
	}
	if segmenter == nil {
		return nil, ErrSegmenterRequired
	}
	if enricher == nil {
		return nil, ErrEnricherRequired
	}
	if gateway == nil {
		return nil, ErrGatewayRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents: documents,
		objects:   objects,
		segmenter: segmenter,
		enricher:  enricher,
		gateway:   gateway,
		pool:      pool,
		logger:    slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Submit marks the document as processing and schedules its ingestion job.
// The job itself runs on the worker pool with its own context; job failures
// are recorded on the document, not returned here.
func (p *Pipeline) Submit(ctx context.Context, documentID core.ID) error {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	doc.Status = core.StatusProcessing
	doc.ErrorDetail = ""
	if _, err := p.documents.UpdateDocument(ctx, doc); err != nil {
		return err
	}

	p.wg.Add(1)
	err = p.pool.Submit(func() {
		defer p.wg.Done()
		p.process(context.Background(), documentID)
	})
	if err != nil {
		p.wg.Done()
		return fmt.Errorf("submitting ingestion job: %w", err)
	}
	return nil
}

// process runs one ingestion job end to end and records the outcome.
func (p *Pipeline) process(ctx context.Context, documentID core.ID) {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		p.logger.Error("document vanished before processing", "id", documentID, "err", err)
		return
	}

	handle, err := p.ingest(ctx, doc)
	if err != nil {
		p.logger.Error("ingestion failed",
			"id", doc.Id, "name", doc.Name, "err", err)
		doc.Status = core.StatusError
		doc.ErrorDetail = core.TruncateError(err, errorDetailLimit)
	} else {
		doc.Status = core.StatusReady
		doc.IndexFileRef = handle
		doc.ErrorDetail = ""
	}

	if _, err := p.documents.UpdateDocument(ctx, doc); err != nil {
		p.logger.Error("recording ingestion outcome", "id", doc.Id, "err", err)
	}
}

// ingest runs the pipeline stages for one document and returns the index
// file handle on success.
func (p *Pipeline) ingest(ctx context.Context, doc *core.Document) (string, error) {
	data, err := p.objects.DownloadBytes(ctx, doc.SourceURI)
	if err != nil {
		return "", fmt.Errorf("downloading %q: %w", doc.SourceURI, err)
	}

	contentType, err := p.objects.ContentType(ctx, doc.SourceURI)
	if err != nil {
		p.logger.Debug("content type unavailable, relying on filename",
			"uri", doc.SourceURI, "err", err)
		contentType = ""
	}

	chunks, err := p.segmenter.Segment(ctx, data, contentType, doc.Name)
	if err != nil {
		return "", fmt.Errorf("segmenting %q: %w", doc.Name, err)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoChunks, doc.Name)
	}

	if err := p.enricher.Enrich(ctx, doc.Name, chunks); err != nil {
		return "", fmt.Errorf("enriching %q: %w", doc.Name, err)
	}

	handle, err := p.gateway.Import(ctx, doc.CorpusRef, doc.SourceURI, doc.Name, chunks)
	if err != nil {
		return "", err
	}

	p.logger.Info("document ingested",
		"id", doc.Id, "name", doc.Name, "chunks", len(chunks), "handle", handle)
	return handle, nil
}

// Delete removes the document's indexed data and its repository row. The
// gateway cleanup is best-effort; the row is removed regardless of how many
// residual objects were found. Deleting an unknown document is a no-op.
func (p *Pipeline) Delete(ctx context.Context, documentID core.ID) error {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	residuals := p.gateway.Delete(ctx, doc.IndexFileRef, doc.SourceURI)
	if residuals == index.CountUnavailable {
		p.logger.Warn("index unreachable during delete, row removed anyway",
			"id", doc.Id, "name", doc.Name)
	} else {
		p.logger.Debug("index cleanup finished",
			"id", doc.Id, "residuals", residuals)
	}

	if err := p.documents.DeleteDocument(ctx, documentID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// Wait blocks until every submitted job has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release waits for in-flight jobs and frees the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}
