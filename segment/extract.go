package segment

import (
	"bytes"
	"context"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// Converter is an external layout-aware converter that turns PDF bytes into
// markdown text with headings preserved.
type Converter interface {
	Convert(ctx context.Context, data []byte) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, data []byte) (string, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// page is one unit of extracted text. number is 1-based for real PDF pages
// and 0 when the source has no page structure.
type page struct {
	number int
	text   string
}

// extract runs the extraction ladder: the layout-aware converter when
// configured, then plain-text PDF extraction, then raw byte decoding.
// Non-PDF content decodes directly. Extraction never fails; the worst case
// is the raw decode rung.
func (s *Segmenter) extract(ctx context.Context, data []byte, contentType, filename string) []page {
	if !isPDF(contentType, filename) {
		return []page{{number: 0, text: string(data)}}
	}

	if s.converter != nil {
		text, err := s.converter.Convert(ctx, data)
		if err == nil && strings.TrimSpace(text) != "" {
			return []page{{number: 0, text: text}}
		}
		s.logger.Warn("layout converter failed, falling back to plain-text extraction",
			"filename", filename, "err", err)
	}

	if pages, err := extractPDFText(ctx, data); err == nil && len(pages) > 0 {
		return pages
	} else if err != nil {
		s.logger.Warn("plain-text PDF extraction failed, falling back to raw decode",
			"filename", filename, "err", err)
	}

	return []page{{number: 0, text: string(data)}}
}

// extractPDFText pulls per-page plain text out of a PDF.
func extractPDFText(ctx context.Context, data []byte) ([]page, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]page, 0, len(docs))
	for i, doc := range docs {
		number := i + 1
		if n, ok := pageNumber(doc.Metadata); ok {
			number = n
		}
		pages = append(pages, page{number: number, text: doc.PageContent})
	}
	return pages, nil
}

func pageNumber(metadata map[string]any) (int, bool) {
	v, ok := metadata["page"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func isPDF(contentType, filename string) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
