package badger

import (
	"time"

	"github.com/lattice-works/semdex/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// indexFile is one row of the vector index's file registry.
type indexFile struct {
	ID          uint64
	Corpus      string
	SourceURI   string
	DisplayName string
	CreatedAt   time.Time
}

// storedChunk is one chunk-level object in the vector index store.
type storedChunk struct {
	ID          uint64
	FileID      uint64
	Corpus      string
	Content     string
	Heading     string
	PageNumber  int64
	SourceURI   string
	DisplayName string
	Vector      []float32
}

var indexFileMUS = indexFileSer{}

type indexFileSer struct{}

func (indexFileSer) Marshal(v indexFile, bs []byte) (n int) {
	n = varint.Uint64.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Corpus, bs[n:])
	n += ord.String.Marshal(v.SourceURI, bs[n:])
	n += ord.String.Marshal(v.DisplayName, bs[n:])
	n += core.TimeMUS.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (indexFileSer) Unmarshal(bs []byte) (v indexFile, n int, err error) {
	var n1 int
	if v.ID, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	if v.Corpus, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SourceURI, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.DisplayName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = core.TimeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (indexFileSer) Size(v indexFile) (size int) {
	size = varint.Uint64.Size(v.ID)
	size += ord.String.Size(v.Corpus)
	size += ord.String.Size(v.SourceURI)
	size += ord.String.Size(v.DisplayName)
	size += core.TimeMUS.Size(v.CreatedAt)
	return size
}

var storedChunkMUS = storedChunkSer{}

type storedChunkSer struct{}

func (storedChunkSer) Marshal(v storedChunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(v.ID, bs)
	n += varint.Uint64.Marshal(v.FileID, bs[n:])
	n += ord.String.Marshal(v.Corpus, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.Heading, bs[n:])
	n += varint.Int64.Marshal(v.PageNumber, bs[n:])
	n += ord.String.Marshal(v.SourceURI, bs[n:])
	n += ord.String.Marshal(v.DisplayName, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(v.Vector)), bs[n:])
	for _, f := range v.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (storedChunkSer) Unmarshal(bs []byte) (v storedChunk, n int, err error) {
	var n1 int
	if v.ID, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	if v.FileID, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Corpus, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Heading, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.PageNumber, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SourceURI, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.DisplayName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var length uint64
	if length, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Vector = make([]float32, length)
	for i := range v.Vector {
		if v.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return v, n + n1, err
		}
		n += n1
	}
	return v, n, nil
}

func (storedChunkSer) Size(v storedChunk) (size int) {
	size = varint.Uint64.Size(v.ID)
	size += varint.Uint64.Size(v.FileID)
	size += ord.String.Size(v.Corpus)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.Heading)
	size += varint.Int64.Size(v.PageNumber)
	size += ord.String.Size(v.SourceURI)
	size += ord.String.Size(v.DisplayName)
	size += varint.Uint64.Size(uint64(len(v.Vector)))
	for _, f := range v.Vector {
		size += raw.Float32.Size(f)
	}
	return size
}

func marshalIndexFile(v indexFile) []byte {
	buf := make([]byte, indexFileMUS.Size(v))
	indexFileMUS.Marshal(v, buf)
	return buf
}

func unmarshalIndexFile(data []byte) (indexFile, error) {
	v, _, err := indexFileMUS.Unmarshal(data)
	return v, err
}

func marshalStoredChunk(v storedChunk) []byte {
	buf := make([]byte, storedChunkMUS.Size(v))
	storedChunkMUS.Marshal(v, buf)
	return buf
}

func unmarshalStoredChunk(data []byte) (storedChunk, error) {
	v, _, err := storedChunkMUS.Unmarshal(data)
	return v, err
}
