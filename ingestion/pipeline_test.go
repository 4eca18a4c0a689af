package ingestion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/lattice-works/semdex/ai/mock"
	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/embedding"
	"github.com/lattice-works/semdex/enrich"
	"github.com/lattice-works/semdex/index"
	"github.com/lattice-works/semdex/segment"
	"github.com/lattice-works/semdex/storage"
	storagebadger "github.com/lattice-works/semdex/storage/badger"
)

// memObjectStore serves document bytes from memory.
type memObjectStore struct {
	files map[string][]byte
	types map[string]string
}

func (s *memObjectStore) DownloadBytes(_ context.Context, uri string) ([]byte, error) {
	data, ok := s.files[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, uri)
	}
	return data, nil
}

func (s *memObjectStore) ContentType(_ context.Context, uri string) (string, error) {
	return s.types[uri], nil
}

type testEnv struct {
	pipeline *Pipeline
	docs     storage.DocumentRepository
	objects  *memObjectStore
	vectors  *storagebadger.VectorIndex
}

func setupPipeline(t *testing.T) *testEnv {
	t.Helper()

	docs, vectors, backend, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		vectors.Close()
		backend.Close()
	})

	embedder, err := embedding.NewClient(aimock.NewMockBackend(), &embedding.Config{Dimension: 8},
		embedding.WithHotCache(embedding.NewHotCache()))
	require.NoError(t, err)

	gateway, err := index.NewGateway(vectors, embedder,
		index.WithDirectStore(vectors),
		index.WithImportBackoff(time.Millisecond))
	require.NoError(t, err)

	segmenter, err := segment.NewSegmenter()
	require.NoError(t, err)

	// Two summaries cover the small fixtures used here; the parser pads or
	// truncates to the batch size either way.
	enricher, err := enrich.NewEnricher(aimock.NewMockGenerator(`["summary one", "summary two"]`))
	require.NoError(t, err)

	objects := &memObjectStore{
		files: map[string][]byte{},
		types: map[string]string{},
	}

	pipeline, err := NewPipeline(docs, objects, segmenter, enricher, gateway,
		WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &testEnv{pipeline: pipeline, docs: docs, objects: objects, vectors: vectors}
}

func addDocument(t *testing.T, env *testEnv, name, uri string, content []byte) *core.Document {
	t.Helper()
	env.objects.files[uri] = content
	doc, err := env.docs.AddDocument(context.Background(), &core.Document{
		Name:      name,
		SourceURI: uri,
		CorpusRef: "corpus-main",
		Status:    core.StatusPending,
	})
	require.NoError(t, err)
	return doc
}

func TestPipeline_Validation(t *testing.T) {
	_, err := NewPipeline(nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
}

func TestSubmit_SuccessfulIngestion(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	doc := addDocument(t, env, "guide.md", "mem://guide.md",
		[]byte("# Setup\n\nInstall the binary and run it.\n\n# Usage\n\nPoint it at a corpus."))

	require.NoError(t, env.pipeline.Submit(ctx, doc.Id))
	env.pipeline.Wait()

	got, err := env.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, got.Status)
	assert.Contains(t, got.IndexFileRef, "files/")
	assert.Empty(t, got.ErrorDetail)

	files, err := env.vectors.ListFiles(ctx, "corpus-main")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "mem://guide.md", files[0].SourceURI)
}

func TestSubmit_MarksProcessingBeforeJobRuns(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	doc := addDocument(t, env, "a.md", "mem://a.md", []byte("# H\n\nbody text"))

	require.NoError(t, env.pipeline.Submit(ctx, doc.Id))

	// Submit returns after the synchronous transition; the job may or may
	// not have finished yet, so only pending is ruled out.
	got, err := env.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.NotEqual(t, core.StatusPending, got.Status)

	env.pipeline.Wait()
}

func TestSubmit_UnknownDocument(t *testing.T) {
	env := setupPipeline(t)

	err := env.pipeline.Submit(context.Background(), core.ID(404))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSubmit_DownloadFailureMarksError(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	doc, err := env.docs.AddDocument(ctx, &core.Document{
		Name:      "missing.md",
		SourceURI: "mem://missing.md",
		CorpusRef: "corpus-main",
		Status:    core.StatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, env.pipeline.Submit(ctx, doc.Id))
	env.pipeline.Wait()

	got, err := env.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, got.Status)
	assert.Contains(t, got.ErrorDetail, "mem://missing.md")
}

func TestSubmit_EmptyDocumentMarksError(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	doc := addDocument(t, env, "empty.md", "mem://empty.md", []byte("   \n\n  "))

	require.NoError(t, env.pipeline.Submit(ctx, doc.Id))
	env.pipeline.Wait()

	got, err := env.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, got.Status)
	assert.Contains(t, got.ErrorDetail, "no chunks")
}

func TestSubmit_ResubmitAfterErrorClearsDetail(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	doc := addDocument(t, env, "late.md", "mem://late.md", []byte(""))

	require.NoError(t, env.pipeline.Submit(ctx, doc.Id))
	env.pipeline.Wait()

	got, err := env.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Equal(t, core.StatusError, got.Status)

	// Content shows up later; the document can be resubmitted.
	env.objects.files["mem://late.md"] = []byte("# Now\n\nthere is content")

	require.NoError(t, env.pipeline.Submit(ctx, doc.Id))
	env.pipeline.Wait()

	got, err = env.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, got.Status)
	assert.Empty(t, got.ErrorDetail)
}

func TestDelete_RemovesRowAndIndexData(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	doc := addDocument(t, env, "gone.md", "mem://gone.md", []byte("# H\n\nsome body"))
	require.NoError(t, env.pipeline.Submit(ctx, doc.Id))
	env.pipeline.Wait()

	require.NoError(t, env.pipeline.Delete(ctx, doc.Id))

	_, err := env.docs.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	files, err := env.vectors.ListFiles(ctx, "corpus-main")
	require.NoError(t, err)
	assert.Empty(t, files)

	objects, err := env.vectors.ScanObjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, objects, "chunk residuals cleaned by the cascade")
}

func TestDelete_UnknownDocumentIsNoop(t *testing.T) {
	env := setupPipeline(t)

	assert.NoError(t, env.pipeline.Delete(context.Background(), core.ID(777)))
}

func TestDelete_PendingDocument(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	doc := addDocument(t, env, "fresh.md", "mem://fresh.md", []byte("# H\n\nbody"))

	require.NoError(t, env.pipeline.Delete(ctx, doc.Id))

	_, err := env.docs.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
