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


package semdex

import (
	"context"
	"log/slog"

	"github.com/lattice-works/semdex/ai"
	"github.com/lattice-works/semdex/ai/openai"
	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/embedding"
	"github.com/lattice-works/semdex/enrich"
	"github.com/lattice-works/semdex/index"
	"github.com/lattice-works/semdex/ingestion"
	"github.com/lattice-works/semdex/search"
	"github.com/lattice-works/semdex/segment"
	"github.com/lattice-works/semdex/storage"
	"github.com/lattice-works/semdex/storage/badger"
)

// Corpus is the top-level handle over one indexed document collection: it
// wires storage, the AI services, the ingestion pipeline, and retrieval.
type Corpus struct {
	name      string
	backend   *badger.Backend
	documents storage.DocumentRepository
	vectors   *badger.VectorIndex
	objects   storage.ObjectStore
	provider  ai.Provider
	embedder  *embedding.Client
	gateway   *index.Gateway
	pipeline  *ingestion.Pipeline
	retriever *search.Retriever
	logger    *slog.Logger
}

// CorpusOption configures Open.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig        *ai.Config
	embeddingConfig *embedding.Config
	objects         storage.ObjectStore
	segmentOpts     []segment.Option
	pipelineOpts    []ingestion.Option
	inMemory        bool
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbeddingConfig sets the embedding ladder configuration.
func WithEmbeddingConfig(config *embedding.Config) CorpusOption {
	return func(o *corpusOptions) {
		if config != nil {
			o.embeddingConfig = config
		}
	}
}

// WithObjectStore sets where document content is downloaded from.
// Default is a local filesystem store.
func WithObjectStore(objects storage.ObjectStore) CorpusOption {
	return func(o *corpusOptions) {
		if objects != nil {
			o.objects = objects
		}
	}
}

// WithSegmentOptions forwards options to the segmenter.
func WithSegmentOptions(opts ...segment.Option) CorpusOption {
	return func(o *corpusOptions) {
		o.segmentOpts = append(o.segmentOpts, opts...)
	}
}

// WithPipelineOptions forwards options to the ingestion pipeline.
func WithPipelineOptions(opts ...ingestion.Option) CorpusOption {
	return func(o *corpusOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithInMemory keeps all storage in memory. Used by tests.
func WithInMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

// Open wires a Corpus over the badger store at dataDir.
func Open(dataDir, name string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
		objects:  storage.NewFileStore(""),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(dataDir, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	vectors, err := badger.NewVectorIndex(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	c := &Corpus{
		name:      name,
		backend:   backend,
		documents: documents,
		vectors:   vectors,
		objects:   options.objects,
		logger:    slog.Default().With("component", "corpus", "corpus", name),
	}

	if err := c.wire(options); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// wire builds the AI services and the pipeline/retriever pair on top of the
// opened stores.
func (c *Corpus) wire(options *corpusOptions) error {
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		return err
	}
	c.provider = provider

	embedder, err := embedding.NewClient(provider.EmbeddingBackend(), options.embeddingConfig)
	if err != nil {
		return err
	}
	c.embedder = embedder

	gateway, err := index.NewGateway(c.vectors, embedder, index.WithDirectStore(c.vectors))
	if err != nil {
		return err
	}
	c.gateway = gateway

	segmenter, err := segment.NewSegmenter(options.segmentOpts...)
	if err != nil {
		return err
	}

	enricher, err := enrich.NewEnricher(provider.Generator())
	if err != nil {
		return err
	}

	pipeline, err := ingestion.NewPipeline(c.documents, c.objects, segmenter, enricher, gateway,
		options.pipelineOpts...)
	if err != nil {
		return err
	}
	c.pipeline = pipeline

	retriever, err := search.NewRetriever(gateway, c.name)
	if err != nil {
		return err
	}
	c.retriever = retriever
	return nil
}

// Ingest records a new document and schedules its background ingestion.
// Use Wait or the returned document's ID with Documents() to observe the
// outcome.
func (c *Corpus) Ingest(ctx context.Context, name, sourceURI string) (*core.Document, error) {
	doc, err := c.documents.AddDocument(ctx, &core.Document{
		Name:      name,
		SourceURI: sourceURI,
		CorpusRef: c.name,
		Status:    core.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	if err := c.pipeline.Submit(ctx, doc.Id); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document's indexed data and its tracking row.
func (c *Corpus) Delete(ctx context.Context, id core.ID) error {
	return c.pipeline.Delete(ctx, id)
}

// SearchKnowledge runs a similarity search over the corpus.
func (c *Corpus) SearchKnowledge(ctx context.Context, query string, topK int) ([]core.RetrievedChunk, error) {
	return c.retriever.SearchKnowledge(ctx, query, topK)
}

// Wait blocks until every in-flight ingestion job has finished.
func (c *Corpus) Wait() {
	c.pipeline.Wait()
}

// Documents exposes the document repository.
func (c *Corpus) Documents() storage.DocumentRepository {
	return c.documents
}

// Pipeline exposes the ingestion pipeline.
func (c *Corpus) Pipeline() *ingestion.Pipeline {
	return c.pipeline
}

// Retriever exposes the retrieval API.
func (c *Corpus) Retriever() *search.Retriever {
	return c.retriever
}

// Close releases the pipeline and closes the AI provider and stores.
func (c *Corpus) Close() error {
	if c.pipeline != nil {
		c.pipeline.Release()
	}
	if c.provider != nil {
		if err := c.provider.Close(); err != nil {
			c.logger.Error("error closing AI provider", "err", err)
		}
	}

	if err := c.documents.Close(); err != nil {
		c.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := c.vectors.Close(); err != nil {
		c.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
