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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/index"
)

// DefaultTopK is the result cap used when the caller passes a non-positive
// one.
const DefaultTopK = 5

// Retriever answers knowledge queries against one corpus.
type Retriever struct {
	gateway *index.Gateway
	corpus  string
	logger  *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a retriever over the given gateway and corpus.
func NewRetriever(gateway *index.Gateway, corpus string, opts ...Option) (*Retriever, error) {
	if gateway == nil {
		return nil, ErrGatewayRequired
	}
	if corpus == "" {
		return nil, ErrCorpusRequired
	}

	r := &Retriever{
		gateway: gateway,
		corpus:  corpus,
		logger:  slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// SearchKnowledge runs a similarity search for the query and returns at most
// topK chunks sorted by similarity descending. A blank query and an
// unreachable index both yield an empty list.
func (r *Retriever) SearchKnowledge(ctx context.Context, query string, topK int) ([]core.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return []core.RetrievedChunk{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	results, err := r.gateway.Search(ctx, r.corpus, query, topK)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}

	r.logger.Debug("knowledge search finished",
		"query", query, "topK", topK, "hits", len(results))
	return results, nil
}

// FormatContext concatenates ranked excerpts into one labeled context
// string, stopping before an excerpt would push the total past maxChars.
// A non-positive maxChars means unbounded.
func FormatContext(results []core.RetrievedChunk, maxChars int) string {
	var b strings.Builder
	total := 0

	for i, result := range results {
		block := excerptLabel(i, result) + "\n" + result.Content
		cost := len([]rune(block))
		if total > 0 {
			cost += 2 // separating blank line
		}
		if maxChars > 0 && total+cost > maxChars {
			break
		}
		if total > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		total += cost
	}

	return b.String()
}

// excerptLabel names one excerpt by its rank and the best available source
// label.
func excerptLabel(i int, result core.RetrievedChunk) string {
	title := result.Heading
	if title == "" {
		title = result.DocumentName
	}
	if title == "" {
		return fmt.Sprintf("[Excerpt %d]", i+1)
	}
	return fmt.Sprintf("[Excerpt %d | %s]", i+1, title)
}
