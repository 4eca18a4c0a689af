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


package segment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lattice-works/semdex/core"
)

const (
	// DefaultChunkSize is the size threshold above which a section is split
	// into overlapping sub-chunks.
	DefaultChunkSize = 800
	// DefaultOverlap is the number of characters shared between consecutive
	// sub-chunks of an oversized section.
	DefaultOverlap = 100
)

// Segmenter converts raw document bytes into an ordered list of chunks,
// preserving heading boundaries and bounding chunk size. It never fails on
// input shape: extraction degrades through a fallback ladder and blank input
// yields an empty chunk list.
type Segmenter struct {
	chunkSize int
	overlap   int
	converter Converter
	logger    *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter) error

// WithChunkSize sets the secondary-split size threshold in characters.
func WithChunkSize(size int) Option {
	return func(s *Segmenter) error {
		if size <= 0 {
			return ErrInvalidChunkSize
		}
		s.chunkSize = size
		return nil
	}
}

// WithOverlap sets the sub-chunk overlap in characters. The overlap must be
// smaller than the chunk size.
func WithOverlap(overlap int) Option {
	return func(s *Segmenter) error {
		if overlap < 0 {
			return ErrInvalidOverlap
		}
		s.overlap = overlap
		return nil
	}
}

// WithConverter sets the layout-aware PDF converter tried first during text
// extraction. Without one, extraction starts at the plain-text ladder rung.
func WithConverter(converter Converter) Option {
	return func(s *Segmenter) error {
		s.converter = converter
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSegmenter creates a segmenter with the given options.
func NewSegmenter(opts ...Option) (*Segmenter, error) {
	s := &Segmenter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		logger:    slog.Default().With("component", "segmenter"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.overlap >= s.chunkSize {
		return nil, ErrInvalidOverlap
	}

	return s, nil
}

// Segment extracts text from the document bytes and splits it into ordered
// chunks. The chunks cover the extracted text exactly once, except for the
// deliberate overlap introduced when an oversized section is sub-split.
// Empty or whitespace-only input yields an empty slice, not an error.
func (s *Segmenter) Segment(ctx context.Context, data []byte, contentType, filename string) ([]core.Chunk, error) {
	pages := s.extract(ctx, data, contentType, filename)

	var chunks []core.Chunk
	offset := 0
	for _, page := range pages {
		sections := splitByHeadings(page.text)
		for _, sec := range sections {
			body := strings.TrimSpace(sec.body)
			if body == "" {
				continue
			}
			chunks = append(chunks, s.splitSection(sec, page.number, offset)...)
		}
		offset += runeLen(page.text) + 1
	}

	// Structural split found nothing usable. Fall back to paragraph
	// boundaries over the whole text.
	if len(chunks) == 0 {
		chunks = s.paragraphFallback(pages)
	}

	s.logger.Debug("segmented document",
		"filename", filename, "pages", len(pages), "chunks", len(chunks))
	return chunks, nil
}

// splitSection turns one heading section into one or more chunks, sub-
// splitting when the body exceeds the size threshold. base is the rune
// offset of the page within the full extracted text.
func (s *Segmenter) splitSection(sec section, pageNumber, base int) []core.Chunk {
	body := []rune(sec.body)

	// Trim surrounding whitespace while keeping offsets accurate.
	start, end := trimSpan(body)
	body = body[start:end]
	bodyStart := base + sec.start + start

	if len(body) == 0 {
		return nil
	}

	spans := windowSpans(body, s.chunkSize, s.overlap)
	chunks := make([]core.Chunk, 0, len(spans))
	for _, span := range spans {
		content := strings.TrimSpace(string(body[span.start:span.end]))
		if content == "" {
			continue
		}
		chunks = append(chunks, core.Chunk{
			Content:    content,
			Heading:    sec.heading,
			PageNumber: pageNumber,
			CharStart:  bodyStart + span.start,
			CharEnd:    bodyStart + span.end,
		})
	}
	return chunks
}

// paragraphFallback splits the full text on blank-line boundaries.
func (s *Segmenter) paragraphFallback(pages []page) []core.Chunk {
	var chunks []core.Chunk
	offset := 0
	for _, pg := range pages {
		pos := 0
		for _, para := range strings.Split(pg.text, "\n\n") {
			content := strings.TrimSpace(para)
			paraLen := runeLen(para)
			if content != "" {
				sec := section{heading: "", body: para, start: pos}
				chunks = append(chunks, s.splitSection(sec, pg.number, offset)...)
			}
			pos += paraLen + 2
		}
		offset += runeLen(pg.text) + 1
	}
	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}

// trimSpan returns the [start, end) rune span of text with surrounding
// whitespace removed.
func trimSpan(text []rune) (int, int) {
	start, end := 0, len(text)
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return start, end
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
