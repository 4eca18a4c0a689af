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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/index"
)

// VectorIndex is an embedded vector index backend over BadgerDB. It serves
// both the file-level surface (index.FileService) and the chunk-level
// cleanup surface (index.DirectStore) that remote index services expose as
// separate APIs.
type VectorIndex struct {
	backend  *Backend
	fileSeq  *badger.Sequence
	chunkSeq *badger.Sequence
	logger   *slog.Logger

	// importing guards against concurrent imports into the same corpus,
	// mirroring the busy/precondition failures of hosted index services.
	mu        sync.Mutex
	importing map[string]bool
}

var (
	_ index.FileService = (*VectorIndex)(nil)
	_ index.DirectStore = (*VectorIndex)(nil)
)

// NewVectorIndex creates a vector index over the backend.
func NewVectorIndex(backend *Backend) (*VectorIndex, error) {
	fileSeq, err := backend.GetSequence(indexFileIDSeq)
	if err != nil {
		return nil, err
	}
	chunkSeq, err := backend.GetSequence(indexChunkIDSeq)
	if err != nil {
		fileSeq.Release()
		return nil, err
	}

	return &VectorIndex{
		backend:   backend,
		fileSeq:   fileSeq,
		chunkSeq:  chunkSeq,
		logger:    slog.Default().With("component", "vector-index"),
		importing: make(map[string]bool),
	}, nil
}

// Close releases the ID sequences.
func (v *VectorIndex) Close() error {
	err := v.fileSeq.Release()
	if err2 := v.chunkSeq.Release(); err == nil {
		err = err2
	}
	return err
}

// ImportFile stores one file-registry row and one object per chunk.
// A second import into the same corpus while one is in flight fails with
// index.ErrConflict, like the precondition failures of hosted services.
func (v *VectorIndex) ImportFile(ctx context.Context, corpus, sourceURI, displayName string, chunks []core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	v.mu.Lock()
	if v.importing[corpus] {
		v.mu.Unlock()
		return fmt.Errorf("%w: corpus %q", index.ErrConflict, corpus)
	}
	v.importing[corpus] = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.importing, corpus)
		v.mu.Unlock()
	}()

	fileID, err := v.nextID(v.fileSeq)
	if err != nil {
		return mapStoreErr(err)
	}

	err = v.backend.WithTx(func(tx *badger.Txn) error {
		file := indexFile{
			ID:          fileID,
			Corpus:      corpus,
			SourceURI:   sourceURI,
			DisplayName: displayName,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Set(makeIndexFileKey(fileID), marshalIndexFile(file)); err != nil {
			return err
		}

		for i, chunk := range chunks {
			chunkID, err := v.nextID(v.chunkSeq)
			if err != nil {
				return err
			}
			record := storedChunk{
				ID:          chunkID,
				FileID:      fileID,
				Corpus:      corpus,
				Content:     chunk.Content,
				Heading:     chunk.Heading,
				PageNumber:  int64(chunk.PageNumber),
				SourceURI:   sourceURI,
				DisplayName: displayName,
				Vector:      vectors[i],
			}
			if err := tx.Set(makeIndexChunkKey(chunkID), marshalStoredChunk(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return mapStoreErr(err)
	}

	v.logger.Debug("imported file", "corpus", corpus, "fileId", fileID, "chunks", len(chunks))
	return nil
}

// ListFiles returns the corpus's file registry, oldest first.
func (v *VectorIndex) ListFiles(ctx context.Context, corpus string) ([]index.FileInfo, error) {
	var files []indexFile
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexFilePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var file indexFile
			err := iter.Item().Value(func(val []byte) error {
				var err error
				file, err = unmarshalIndexFile(val)
				return err
			})
			if err != nil {
				return err
			}
			if file.Corpus == corpus {
				files = append(files, file)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	slices.SortFunc(files, func(a, b indexFile) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	infos := make([]index.FileInfo, 0, len(files))
	for _, file := range files {
		infos = append(infos, index.FileInfo{
			Name:        fileHandle(file.ID),
			DisplayName: file.DisplayName,
			SourceURI:   file.SourceURI,
		})
	}
	return infos, nil
}

// DeleteFile removes the file-registry row only. Chunk objects are left
// for the caller's residual cleanup, the way hosted services orphan
// chunk-level entries.
func (v *VectorIndex) DeleteFile(ctx context.Context, handle string) error {
	fileID, err := parseHandle(handle)
	if err != nil {
		return err
	}

	err = v.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIndexFileKey(fileID)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return index.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return mapStoreErr(err)
}

// Query scans the corpus's chunks and returns the topK nearest by cosine
// distance, closest first, excluding hits beyond maxDistance.
func (v *VectorIndex) Query(ctx context.Context, corpus string, vector []float32, topK int, maxDistance float64) ([]index.Hit, error) {
	type scored struct {
		chunk    storedChunk
		distance float64
	}

	var matches []scored
	err := v.forEachChunk(func(chunk storedChunk) error {
		if chunk.Corpus != corpus || len(chunk.Vector) == 0 {
			return nil
		}
		distance := 1 - cosineSimilarity(vector, chunk.Vector)
		if distance <= maxDistance {
			matches = append(matches, scored{chunk: chunk, distance: distance})
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	slices.SortFunc(matches, func(a, b scored) int {
		if a.distance < b.distance {
			return -1
		}
		if a.distance > b.distance {
			return 1
		}
		return 0
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	hits := make([]index.Hit, 0, len(matches))
	for _, match := range matches {
		hits = append(hits, index.Hit{
			Content:     match.chunk.Content,
			Heading:     match.chunk.Heading,
			PageNumber:  int(match.chunk.PageNumber),
			SourceURI:   match.chunk.SourceURI,
			DisplayName: match.chunk.DisplayName,
			Distance:    match.distance,
		})
	}
	return hits, nil
}

// DeleteByProperty removes every chunk whose property equals value exactly.
func (v *VectorIndex) DeleteByProperty(ctx context.Context, property, value string) (int, error) {
	var ids []uint64
	err := v.forEachChunk(func(chunk storedChunk) error {
		if chunkProperties(chunk)[property] == value {
			ids = append(ids, chunk.ID)
		}
		return nil
	})
	if err != nil {
		return 0, mapStoreErr(err)
	}
	return v.deleteChunks(ids)
}

// Properties lists the chunk property names, the store's schema.
func (v *VectorIndex) Properties(ctx context.Context) ([]string, error) {
	if v.backend.IsClosed() {
		return nil, fmt.Errorf("%w: store closed", index.ErrUnavailable)
	}
	return []string{
		index.PropContent,
		index.PropHeading,
		index.PropPageNumber,
		index.PropSourceURI,
		index.PropFileID,
		index.PropDisplayName,
	}, nil
}

// ScanObjects fetches every chunk with its stringified properties.
func (v *VectorIndex) ScanObjects(ctx context.Context) ([]index.StoredObject, error) {
	var objects []index.StoredObject
	err := v.forEachChunk(func(chunk storedChunk) error {
		objects = append(objects, index.StoredObject{
			ID:         strconv.FormatUint(chunk.ID, 10),
			Properties: chunkProperties(chunk),
		})
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return objects, nil
}

// DeleteObjects removes chunks by their stringified IDs.
func (v *VectorIndex) DeleteObjects(ctx context.Context, ids []string) (int, error) {
	numeric := make([]uint64, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			continue
		}
		numeric = append(numeric, n)
	}
	return v.deleteChunks(numeric)
}

func (v *VectorIndex) deleteChunks(ids []uint64) (int, error) {
	if v.backend.IsClosed() {
		return 0, fmt.Errorf("%w: store closed", index.ErrUnavailable)
	}
	deleted := 0
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeIndexChunkKey(id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, mapStoreErr(err)
	}
	return deleted, nil
}

func (v *VectorIndex) forEachChunk(fn func(chunk storedChunk) error) error {
	if v.backend.IsClosed() {
		return fmt.Errorf("%w: store closed", index.ErrUnavailable)
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexChunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk storedChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = unmarshalStoredChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

func (v *VectorIndex) nextID(seq *badger.Sequence) (uint64, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return next, nil
}

// chunkProperties renders a chunk as the loosely-schematized property map
// seen through the direct store.
func chunkProperties(chunk storedChunk) map[string]string {
	return map[string]string{
		index.PropContent:     chunk.Content,
		index.PropHeading:     chunk.Heading,
		index.PropPageNumber:  strconv.FormatInt(chunk.PageNumber, 10),
		index.PropSourceURI:   chunk.SourceURI,
		index.PropFileID:      strconv.FormatUint(chunk.FileID, 10),
		index.PropDisplayName: chunk.DisplayName,
	}
}

func fileHandle(id uint64) string {
	return "files/" + strconv.FormatUint(id, 10)
}

func parseHandle(handle string) (uint64, error) {
	tail := handle
	if i := strings.LastIndex(handle, "/"); i >= 0 {
		tail = handle[i+1:]
	}
	id, err := strconv.ParseUint(tail, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad handle %q", index.ErrNotFound, handle)
	}
	return id, nil
}

// mapStoreErr translates a closed database into the unavailable class the
// cleanup cascade understands.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return fmt.Errorf("%w: %v", index.ErrUnavailable, err)
	}
	return err
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths compare over the shorter prefix.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
