package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/lattice-works/semdex/ai/mock"
	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/embedding"
	"github.com/lattice-works/semdex/index"
)

// stubFileService serves canned hits for Query and is inert otherwise.
type stubFileService struct {
	hits     []index.Hit
	queryErr error
	queries  int
}

func (s *stubFileService) ImportFile(ctx context.Context, corpus, sourceURI, displayName string, chunks []core.Chunk, vectors [][]float32) error {
	return nil
}

func (s *stubFileService) ListFiles(ctx context.Context, corpus string) ([]index.FileInfo, error) {
	return nil, nil
}

func (s *stubFileService) DeleteFile(ctx context.Context, handle string) error {
	return nil
}

func (s *stubFileService) Query(ctx context.Context, corpus string, vector []float32, topK int, maxDistance float64) ([]index.Hit, error) {
	s.queries++
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.hits, nil
}

func setupRetriever(t *testing.T, files *stubFileService) *Retriever {
	t.Helper()

	embedder, err := embedding.NewClient(aimock.NewMockBackend(), &embedding.Config{Dimension: 8},
		embedding.WithHotCache(embedding.NewHotCache()))
	require.NoError(t, err)

	gateway, err := index.NewGateway(files, embedder)
	require.NoError(t, err)

	retriever, err := NewRetriever(gateway, "corpus-main")
	require.NoError(t, err)
	return retriever
}

func TestNewRetriever_Validation(t *testing.T) {
	_, err := NewRetriever(nil, "c")
	assert.ErrorIs(t, err, ErrGatewayRequired)

	embedder, err := embedding.NewClient(aimock.NewMockBackend(), nil,
		embedding.WithHotCache(embedding.NewHotCache()))
	require.NoError(t, err)
	gateway, err := index.NewGateway(&stubFileService{}, embedder)
	require.NoError(t, err)

	_, err = NewRetriever(gateway, "")
	assert.ErrorIs(t, err, ErrCorpusRequired)
}

func TestSearchKnowledge_RanksAndCaps(t *testing.T) {
	files := &stubFileService{hits: []index.Hit{
		{Content: "middling", Distance: 0.5},
		{Content: "best", Distance: 0.1},
		{Content: "worst", Distance: 0.8},
	}}
	retriever := setupRetriever(t, files)

	results, err := retriever.SearchKnowledge(context.Background(), "what is semdex", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "best", results[0].Content)
	assert.Equal(t, "middling", results[1].Content)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchKnowledge_DefaultTopK(t *testing.T) {
	hits := make([]index.Hit, 10)
	for i := range hits {
		hits[i] = index.Hit{Content: "c", Distance: float64(i) / 20}
	}
	retriever := setupRetriever(t, &stubFileService{hits: hits})

	results, err := retriever.SearchKnowledge(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}

func TestSearchKnowledge_BlankQuery(t *testing.T) {
	files := &stubFileService{}
	retriever := setupRetriever(t, files)

	results, err := retriever.SearchKnowledge(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, files.queries, "blank query never reaches the index")
}

func TestSearchKnowledge_UnreachableIndex(t *testing.T) {
	files := &stubFileService{queryErr: index.ErrUnavailable}
	retriever := setupRetriever(t, files)

	results, err := retriever.SearchKnowledge(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFormatContext_LabelsAndOrder(t *testing.T) {
	results := []core.RetrievedChunk{
		{Content: "first body", Heading: "Intro"},
		{Content: "second body", DocumentName: "guide.pdf"},
		{Content: "third body"},
	}

	got := FormatContext(results, 0)
	assert.Contains(t, got, "[Excerpt 1 | Intro]\nfirst body")
	assert.Contains(t, got, "[Excerpt 2 | guide.pdf]\nsecond body")
	assert.Contains(t, got, "[Excerpt 3]\nthird body")
	assert.Less(t, strings.Index(got, "Excerpt 1"), strings.Index(got, "Excerpt 2"))
}

func TestFormatContext_StopsBeforeBudget(t *testing.T) {
	results := []core.RetrievedChunk{
		{Content: "aaaaaaaaaa", Heading: "A"},
		{Content: "bbbbbbbbbb", Heading: "B"},
		{Content: "cccccccccc", Heading: "C"},
	}

	first := "[Excerpt 1 | A]\naaaaaaaaaa"
	got := FormatContext(results, len(first)+5)
	assert.Equal(t, first, got, "second excerpt would exceed the budget")

	assert.Empty(t, FormatContext(results, 3), "budget too small for any excerpt")
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Empty(t, FormatContext(nil, 100))
}
