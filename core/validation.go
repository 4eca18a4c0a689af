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


package core

import "fmt"

// MaxErrorDetail bounds the stored diagnostic message on failed documents.
const MaxErrorDetail = 500

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - CharEnd must be greater than CharStart
//
// NOT validated (populated by later stages):
//   - ContextSummary / EnrichedContent (empty until the enricher runs)
//   - Heading and PageNumber (legitimately absent for plain text)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.CharEnd <= chunk.CharStart {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidOffsets)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - SourceURI must not be empty
//   - CorpusRef must not be empty
//   - Status must be a defined value
//
// NOT validated (populated by the pipeline):
//   - IndexFileRef (empty until import succeeds)
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.SourceURI == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySourceURI)
	}

	if doc.CorpusRef == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyCorpusRef)
	}

	if !doc.Status.Valid() {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidDocument, ErrInvalidStatus, doc.Status)
	}

	return nil
}

// ChunksAreOrdered reports whether chunk start offsets are strictly
// increasing in slice order, the invariant the segmenter guarantees.
func ChunksAreOrdered(chunks []Chunk) bool {
	for i := 1; i < len(chunks); i++ {
		if chunks[i].CharStart <= chunks[i-1].CharStart {
			return false
		}
	}
	return true
}

// TruncateError renders an error for persistence, bounded to max runes.
// A nil error yields the empty string.
func TruncateError(err error, max int) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if max <= 0 {
		max = MaxErrorDetail
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max])
}
