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


package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/embedding"
	"github.com/lattice-works/semdex/retry"
)

const (
	// DefaultImportAttempts bounds conflict retries during import.
	DefaultImportAttempts = 5
	// DefaultImportBackoff is the base delay between conflict retries,
	// doubled on each attempt. Index imports are slow server-side
	// operations, hence the long base.
	DefaultImportBackoff = 10 * time.Second
	// DefaultMaxDistance is deliberately permissive: favor recall and let
	// the consuming LLM filter relevance.
	DefaultMaxDistance = 0.9

	// CountUnavailable is returned by Delete when the store cannot be
	// reached, distinct from "zero residual objects found".
	CountUnavailable = -1
)

// Gateway owns import, search, and cascading deletion against an external
// vector index, tolerating its weak consistency and schema variability.
type Gateway struct {
	files    FileService
	store    DirectStore
	embedder *embedding.Client

	importAttempts int
	importBackoff  time.Duration
	maxDistance    float64
	logger         *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway) error

// WithDirectStore enables chunk-level residual cleanup during deletion.
// Without one, deletion stops after the file-level phase.
func WithDirectStore(store DirectStore) Option {
	return func(g *Gateway) error {
		g.store = store
		return nil
	}
}

// WithImportAttempts sets the conflict-retry bound for imports.
func WithImportAttempts(attempts int) Option {
	return func(g *Gateway) error {
		if attempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		g.importAttempts = attempts
		return nil
	}
}

// WithImportBackoff sets the base delay between conflict retries.
func WithImportBackoff(d time.Duration) Option {
	return func(g *Gateway) error {
		g.importBackoff = d
		return nil
	}
}

// WithMaxDistance sets the similarity-query distance threshold.
func WithMaxDistance(maxDistance float64) Option {
	return func(g *Gateway) error {
		g.maxDistance = maxDistance
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGateway creates a gateway over the given file service and embedding
// client.
func NewGateway(files FileService, embedder *embedding.Client, opts ...Option) (*Gateway, error) {
	if files == nil {
		return nil, ErrFileServiceRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	g := &Gateway{
		files:          files,
		embedder:       embedder,
		importAttempts: DefaultImportAttempts,
		importBackoff:  DefaultImportBackoff,
		maxDistance:    DefaultMaxDistance,
		logger:         slog.Default().With("component", "index-gateway"),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Import embeds the enriched chunks and submits them for indexing under the
// corpus, retrying backend conflicts with exponential backoff. On success it
// resolves and returns the backend's opaque file handle: an exact source-URI
// match over the file listing, or the most recently listed file when the
// backend does not echo the URI back.
func (g *Gateway) Import(ctx context.Context, corpus, sourceURI, displayName string, chunks []core.Chunk) (string, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].EmbedText()
	}

	vectors, err := g.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("embedding chunks: %w", err)
	}

	var importErr error
	err = retry.WithBackoff(ctx, func() error {
		importErr = g.files.ImportFile(ctx, corpus, sourceURI, displayName, chunks, vectors)
		if errors.Is(importErr, ErrConflict) {
			g.logger.Warn("index busy, retrying import", "corpus", corpus, "sourceUri", sourceURI)
			return importErr
		}
		return nil
	}, g.importAttempts, g.importBackoff)
	if err == nil {
		err = importErr
	}
	if err != nil {
		return "", fmt.Errorf("importing %q: %w", sourceURI, err)
	}

	return g.resolveHandle(ctx, corpus, sourceURI)
}

// resolveHandle matches the submitted source URI against the backend's file
// listing. Some backends do not store the URI, so the most recently listed
// file serves as a fallback heuristic.
func (g *Gateway) resolveHandle(ctx context.Context, corpus, sourceURI string) (string, error) {
	files, err := g.files.ListFiles(ctx, corpus)
	if err != nil {
		return "", fmt.Errorf("listing files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("resolving handle for %q: %w", sourceURI, ErrNotFound)
	}

	for _, file := range files {
		if file.SourceURI == sourceURI {
			return file.Name, nil
		}
	}

	last := files[len(files)-1]
	g.logger.Debug("no exact source match, using most recent file",
		"sourceUri", sourceURI, "handle", last.Name)
	return last.Name, nil
}

// Search embeds the query and runs a similarity search, normalizing each hit
// to a retrieved chunk with similarity in [0, 1]. Zero matches and a
// non-fatal unreachable backend both yield an empty list, not an error.
func (g *Gateway) Search(ctx context.Context, corpus, query string, topK int) ([]core.RetrievedChunk, error) {
	vector, err := g.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := g.files.Query(ctx, corpus, vector, topK, g.maxDistance)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			g.logger.Warn("index unreachable, returning no results", "corpus", corpus, "err", err)
			return []core.RetrievedChunk{}, nil
		}
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]core.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		results = append(results, core.RetrievedChunk{
			Content:      hit.Content,
			DocumentName: hit.DisplayName,
			Heading:      hit.Heading,
			SourceURI:    hit.SourceURI,
			PageNumber:   hit.PageNumber,
			Similarity:   similarity(hit),
		})
	}
	return results, nil
}

// similarity derives a 0-1 relevance from a hit: the native score when the
// backend reports one, else 1 - distance, clamped either way.
func similarity(hit Hit) float32 {
	s := hit.Score
	if !hit.HasScore {
		s = 1 - hit.Distance
	}
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return float32(s)
}

// Delete removes an imported file and its residual chunk objects. The two
// phases are independent and best-effort; failures are logged, never raised,
// so deletion stays callable repeatedly. Returns the number of residual
// objects deleted, or CountUnavailable when the store cannot be reached.
func (g *Gateway) Delete(ctx context.Context, handle, sourceURI string) int {
	if handle != "" {
		err := g.files.DeleteFile(ctx, handle)
		switch {
		case err == nil:
			g.logger.Debug("deleted index file", "handle", handle)
		case errors.Is(err, ErrNotFound):
			// Already gone; deletion is idempotent.
		default:
			g.logger.Warn("file-level delete failed, continuing to store cleanup",
				"handle", handle, "err", err)
		}
	}

	if g.store == nil {
		return 0
	}
	return g.cleanResiduals(ctx, handle, sourceURI)
}

// cleanResiduals walks the cascade over the direct store, short-circuiting
// once a phase deletes at least one object.
func (g *Gateway) cleanResiduals(ctx context.Context, handle, sourceURI string) int {
	// Exact match on the stored source URI.
	n, err := g.store.DeleteByProperty(ctx, PropSourceURI, sourceURI)
	if unavailable(err) {
		return CountUnavailable
	}
	if n > 0 {
		return n
	}

	// Exact match on the numeric file identifier from the handle.
	if fileID := numericHandleID(handle); fileID != "" {
		n, err = g.store.DeleteByProperty(ctx, PropFileID, fileID)
		if unavailable(err) {
			return CountUnavailable
		}
		if n > 0 {
			return n
		}
	}

	filename := baseName(sourceURI)

	// Schema-introspected fuzzy match on source-like properties.
	properties, err := g.store.Properties(ctx)
	if unavailable(err) {
		return CountUnavailable
	}
	candidates := sourceLikeProperties(properties)

	var objects []StoredObject
	if len(candidates) > 0 {
		objects, err = g.store.ScanObjects(ctx)
		if unavailable(err) {
			return CountUnavailable
		}

		ids := matchObjects(objects, candidates, filename, sourceURI)
		if len(ids) > 0 {
			n, err = g.store.DeleteObjects(ctx, ids)
			if unavailable(err) {
				return CountUnavailable
			}
			if n > 0 {
				return n
			}
		}
	}

	// Last resort: full scan matching any serialized property.
	if objects == nil {
		objects, err = g.store.ScanObjects(ctx)
		if unavailable(err) {
			return CountUnavailable
		}
	}
	ids := matchObjects(objects, nil, filename, sourceURI)
	if len(ids) == 0 {
		g.logger.Debug("no residual objects found", "sourceUri", sourceURI)
		return 0
	}
	n, err = g.store.DeleteObjects(ctx, ids)
	if unavailable(err) {
		return CountUnavailable
	}
	return n
}

func unavailable(err error) bool {
	return err != nil && errors.Is(err, ErrUnavailable)
}

// sourceLikeProperties filters a schema for property names that suggest a
// stored source path or URL.
func sourceLikeProperties(properties []string) []string {
	keywords := []string{"uri", "url", "path", "source", "file"}
	var candidates []string
	for _, property := range properties {
		lower := strings.ToLower(property)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				candidates = append(candidates, property)
				break
			}
		}
	}
	return candidates
}

// matchObjects returns IDs of objects whose properties substring-match the
// filename or full URI. A nil candidate list means every property is fair
// game.
func matchObjects(objects []StoredObject, candidates []string, filename, sourceURI string) []string {
	var ids []string
	for _, object := range objects {
		if objectMatches(object, candidates, filename, sourceURI) {
			ids = append(ids, object.ID)
		}
	}
	return ids
}

func objectMatches(object StoredObject, candidates []string, filename, sourceURI string) bool {
	for property, value := range object.Properties {
		if candidates != nil && !slices.Contains(candidates, property) {
			continue
		}
		if filename != "" && strings.Contains(value, filename) {
			return true
		}
		if sourceURI != "" && strings.Contains(value, sourceURI) {
			return true
		}
	}
	return false
}

// numericHandleID extracts the trailing numeric identifier from an opaque
// handle like "files/42". Returns "" when the handle has no numeric tail.
func numericHandleID(handle string) string {
	if handle == "" {
		return ""
	}
	tail := handle
	if i := strings.LastIndex(handle, "/"); i >= 0 {
		tail = handle[i+1:]
	}
	if tail == "" {
		return ""
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return tail
}

// baseName extracts the final path element of a URI or filesystem path.
func baseName(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
