package badger

import (
	"context"
	"testing"

	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVectorIndex(t *testing.T) (*VectorIndex, *Backend) {
	t.Helper()
	docs, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		vectors.Close()
		backend.Close()
	})
	return vectors, backend
}

func chunkFixture(content, heading string) core.Chunk {
	return core.Chunk{
		Content:   content,
		Heading:   heading,
		CharStart: 0,
		CharEnd:   len(content),
	}
}

func importFixture(t *testing.T, vi *VectorIndex, corpus, sourceURI string, vectors [][]float32) {
	t.Helper()
	chunks := make([]core.Chunk, len(vectors))
	for i := range chunks {
		chunks[i] = chunkFixture("chunk content", "Heading")
	}
	require.NoError(t, vi.ImportFile(context.Background(), corpus, sourceURI, "name.pdf", chunks, vectors))
}

func TestImportFile_AndListFiles(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	importFixture(t, vi, "c1", "s3://docs/a.pdf", [][]float32{{1, 0}, {0, 1}})
	importFixture(t, vi, "c1", "s3://docs/b.pdf", [][]float32{{1, 1}})
	importFixture(t, vi, "c2", "s3://docs/c.pdf", [][]float32{{0, 1}})

	files, err := vi.ListFiles(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "s3://docs/a.pdf", files[0].SourceURI, "oldest first")
	assert.Equal(t, "s3://docs/b.pdf", files[1].SourceURI)
	assert.Contains(t, files[0].Name, "files/")
}

func TestImportFile_CountMismatch(t *testing.T) {
	vi, _ := setupVectorIndex(t)

	err := vi.ImportFile(context.Background(), "c", "uri", "d",
		[]core.Chunk{chunkFixture("x", "")}, nil)
	assert.Error(t, err)
}

func TestQuery_RanksByCosineDistance(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	chunks := []core.Chunk{
		chunkFixture("exact match", "A"),
		chunkFixture("orthogonal", "B"),
		chunkFixture("close", "C"),
	}
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0.9, 0.1},
	}
	require.NoError(t, vi.ImportFile(ctx, "c1", "uri", "d.pdf", chunks, vectors))

	hits, err := vi.Query(ctx, "c1", []float32{1, 0}, 2, 0.9)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "exact match", hits[0].Content)
	assert.Equal(t, "close", hits[1].Content)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
	assert.False(t, hits[0].HasScore, "backend reports distance, not native score")
}

func TestQuery_MaxDistanceFilters(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, vi.ImportFile(ctx, "c1", "uri", "d.pdf",
		[]core.Chunk{chunkFixture("far", "")}, [][]float32{{0, 1}}))

	hits, err := vi.Query(ctx, "c1", []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	assert.Empty(t, hits, "orthogonal vector sits at distance 1")
}

func TestQuery_CorpusIsolation(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	importFixture(t, vi, "c1", "uri-1", [][]float32{{1, 0}})
	importFixture(t, vi, "c2", "uri-2", [][]float32{{1, 0}})

	hits, err := vi.Query(ctx, "c1", []float32{1, 0}, 10, 0.9)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "uri-1", hits[0].SourceURI)
}

func TestDeleteFile_LeavesChunkResiduals(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	importFixture(t, vi, "c1", "uri", [][]float32{{1, 0}, {0, 1}})

	files, err := vi.ListFiles(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, files, 1)

	require.NoError(t, vi.DeleteFile(ctx, files[0].Name))

	files, err = vi.ListFiles(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, files, "registry row removed")

	objects, err := vi.ScanObjects(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 2, "chunk objects are orphaned, not cascaded")
}

func TestDeleteFile_NotFound(t *testing.T) {
	vi, _ := setupVectorIndex(t)

	err := vi.DeleteFile(context.Background(), "files/999")
	assert.ErrorIs(t, err, index.ErrNotFound)

	err = vi.DeleteFile(context.Background(), "not-a-handle")
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestDeleteByProperty(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	importFixture(t, vi, "c1", "uri-a", [][]float32{{1, 0}, {0, 1}})
	importFixture(t, vi, "c1", "uri-b", [][]float32{{1, 1}})

	deleted, err := vi.DeleteByProperty(ctx, index.PropSourceURI, "uri-a")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	objects, err := vi.ScanObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "uri-b", objects[0].Properties[index.PropSourceURI])
}

func TestDeleteByProperty_FileID(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	importFixture(t, vi, "c1", "uri-a", [][]float32{{1, 0}})

	objects, err := vi.ScanObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	fileID := objects[0].Properties[index.PropFileID]
	require.NotEmpty(t, fileID)

	deleted, err := vi.DeleteByProperty(ctx, index.PropFileID, fileID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestScanObjects_Properties(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	chunks := []core.Chunk{{Content: "body text", Heading: "Intro", PageNumber: 3, CharStart: 0, CharEnd: 9}}
	require.NoError(t, vi.ImportFile(ctx, "c1", "s3://b/k.pdf", "k.pdf", chunks, [][]float32{{1, 0}}))

	objects, err := vi.ScanObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)

	props := objects[0].Properties
	assert.Equal(t, "body text", props[index.PropContent])
	assert.Equal(t, "Intro", props[index.PropHeading])
	assert.Equal(t, "3", props[index.PropPageNumber])
	assert.Equal(t, "s3://b/k.pdf", props[index.PropSourceURI])
	assert.Equal(t, "k.pdf", props[index.PropDisplayName])
}

func TestDeleteObjects(t *testing.T) {
	vi, _ := setupVectorIndex(t)
	ctx := context.Background()

	importFixture(t, vi, "c1", "uri", [][]float32{{1, 0}, {0, 1}})

	objects, err := vi.ScanObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 2)

	deleted, err := vi.DeleteObjects(ctx, []string{objects[0].ID, "not-numeric", "99999"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestProperties_Schema(t *testing.T) {
	vi, _ := setupVectorIndex(t)

	props, err := vi.Properties(context.Background())
	require.NoError(t, err)
	assert.Contains(t, props, index.PropSourceURI)
	assert.Contains(t, props, index.PropFileID)
}

func TestClosedBackend_Unavailable(t *testing.T) {
	docs, vi, backend, err := NewMemoryStores()
	require.NoError(t, err)
	docs.Close()
	vi.Close()
	require.NoError(t, backend.Close())

	_, err = vi.ScanObjects(context.Background())
	assert.ErrorIs(t, err, index.ErrUnavailable)

	_, err = vi.Properties(context.Background())
	assert.ErrorIs(t, err, index.ErrUnavailable)

	_, err = vi.DeleteByProperty(context.Background(), index.PropSourceURI, "x")
	assert.ErrorIs(t, err, index.ErrUnavailable)
}

func TestRecordSerialization_RoundTrip(t *testing.T) {
	chunk := storedChunk{
		ID:          7,
		FileID:      3,
		Corpus:      "c1",
		Content:     "text with unicode 日本語",
		Heading:     "H",
		PageNumber:  12,
		SourceURI:   "s3://b/k.pdf",
		DisplayName: "k.pdf",
		Vector:      []float32{0.25, -1.5, 3},
	}

	decoded, err := unmarshalStoredChunk(marshalStoredChunk(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)

	file := indexFile{ID: 9, Corpus: "c1", SourceURI: "uri", DisplayName: "n"}
	decodedFile, err := unmarshalIndexFile(marshalIndexFile(file))
	require.NoError(t, err)
	assert.Equal(t, file.ID, decodedFile.ID)
	assert.Equal(t, file.SourceURI, decodedFile.SourceURI)
}
