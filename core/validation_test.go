package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name:  "valid chunk",
			chunk: &Chunk{Content: "some text", CharStart: 0, CharEnd: 9},
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "empty content",
			chunk:   &Chunk{CharStart: 0, CharEnd: 1},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "inverted offsets",
			chunk:   &Chunk{Content: "x", CharStart: 5, CharEnd: 5},
			wantErr: ErrInvalidOffsets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestValidateDocument(t *testing.T) {
	valid := func() *Document {
		return &Document{
			Name:      "report.pdf",
			SourceURI: "s3://bucket/report.pdf",
			CorpusRef: "knowledge",
			Status:    StatusPending,
		}
	}

	t.Run("valid document", func(t *testing.T) {
		assert.NoError(t, ValidateDocument(valid()))
	})

	t.Run("missing source URI", func(t *testing.T) {
		doc := valid()
		doc.SourceURI = ""
		assert.ErrorIs(t, ValidateDocument(doc), ErrEmptySourceURI)
	})

	t.Run("missing corpus ref", func(t *testing.T) {
		doc := valid()
		doc.CorpusRef = ""
		assert.ErrorIs(t, ValidateDocument(doc), ErrEmptyCorpusRef)
	})

	t.Run("invalid status", func(t *testing.T) {
		doc := valid()
		doc.Status = DocumentStatus(42)
		assert.ErrorIs(t, ValidateDocument(doc), ErrInvalidStatus)
	})
}

func TestChunksAreOrdered(t *testing.T) {
	ordered := []Chunk{
		{CharStart: 0, CharEnd: 10},
		{CharStart: 10, CharEnd: 25},
		{CharStart: 25, CharEnd: 30},
	}
	assert.True(t, ChunksAreOrdered(ordered))

	unordered := []Chunk{
		{CharStart: 10, CharEnd: 25},
		{CharStart: 0, CharEnd: 10},
	}
	assert.False(t, ChunksAreOrdered(unordered))

	assert.True(t, ChunksAreOrdered(nil), "empty list is trivially ordered")
}

func TestTruncateError(t *testing.T) {
	assert.Equal(t, "", TruncateError(nil, 10))

	short := errors.New("short")
	assert.Equal(t, "short", TruncateError(short, 10))

	long := errors.New(strings.Repeat("x", 600))
	got := TruncateError(long, 0)
	assert.Len(t, got, MaxErrorDetail, "default bound applies when max <= 0")

	got = TruncateError(long, 100)
	assert.Len(t, got, 100)
}
