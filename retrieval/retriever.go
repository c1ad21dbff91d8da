// Copyright 2025 Poiesic Systems
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


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/corpus"
	"github.com/poiesic/docchat/embedding"
)

const (
	// DefaultCandidateCount is the semantic-stage pool size handed to the
	// reranker.
	DefaultCandidateCount = 5

	// DefaultTopK is the number of results returned after reranking.
	DefaultTopK = 3
)

// Retriever runs the two-stage retrieval pipeline: semantic candidate
// selection over cached embeddings, then cross-encoder reranking.
type Retriever struct {
	cache      *embedding.Cache
	reranker   ai.Reranker
	candidates int
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithCandidateCount sets the semantic-stage pool size.
// Default is DefaultCandidateCount.
func WithCandidateCount(n int) Option {
	return func(r *Retriever) error {
		if n < 1 {
			return fmt.Errorf("%w: candidate count %d", ErrInvalidTopK, n)
		}
		r.candidates = n
		return nil
	}
}

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

// NewRetriever creates a Retriever over an embedding cache and a reranker.
func NewRetriever(cache *embedding.Cache, reranker ai.Reranker, opts ...Option) (*Retriever, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if reranker == nil {
		return nil, ErrRerankerRequired
	}

	r := &Retriever{
		cache:      cache,
		reranker:   reranker,
		candidates: DefaultCandidateCount,
		logger:     slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// RetrieveOption adjusts a single Retrieve call.
type RetrieveOption func(*retrieveParams)

type retrieveParams struct {
	document core.DocumentID
	monitor  RetrievalMonitor
}

// WithDocument restricts retrieval to fragments of one document identity.
func WithDocument(id core.DocumentID) RetrieveOption {
	return func(p *retrieveParams) {
		p.document = id
	}
}

// WithMonitor attaches a stage observer to the call.
func WithMonitor(m RetrievalMonitor) RetrieveOption {
	return func(p *retrieveParams) {
		if m != nil {
			p.monitor = m
		}
	}
}

// Retrieve returns the topK fragments most relevant to the query, highest
// score first. Semantic search narrows the corpus to a candidate pool, the
// cross-encoder orders the pool. An empty corpus, including one emptied by
// a document filter, returns an empty slice without touching any model.
func (r *Retriever) Retrieve(ctx context.Context, query string, fragments []core.Fragment, topK int, opts ...RetrieveOption) ([]core.ScoredFragment, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopK, topK)
	}

	params := retrieveParams{monitor: noopMonitor{}}
	for _, opt := range opts {
		opt(&params)
	}
	params.monitor.Start(query, len(fragments))

	if params.document != "" {
		fragments = corpus.FilterByDocument(fragments, params.document)
	}
	params.monitor.AfterDocumentFilter(len(fragments))

	if len(fragments) == 0 {
		r.logger.Debug("empty corpus, nothing to retrieve", "query", query)
		params.monitor.Finish(nil)
		return []core.ScoredFragment{}, nil
	}

	vectors, err := r.cache.EmbedFragments(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}

	queryVector, err := r.cache.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	params.monitor.AfterQueryEmbedding(len(queryVector))

	// The pool must be at least topK wide or reranking could only shrink
	// the result set.
	pool := r.candidates
	if topK > pool {
		pool = topK
	}

	candidates := SemanticSearch(queryVector, fragments, vectors, pool)
	params.monitor.AfterSemanticSearch(candidates)
	r.logger.Debug("semantic stage complete",
		"query", query, "corpus", len(fragments), "candidates", len(candidates))

	results, err := r.rerank(ctx, query, candidates, topK)
	if err != nil {
		return nil, err
	}

	params.monitor.Finish(results)
	r.logger.Info("retrieval complete", "query", query, "results", len(results))
	return results, nil
}

// rerank re-scores candidates with the cross-encoder and keeps the topK
// best. Ties keep the semantic-stage order.
func (r *Retriever) rerank(ctx context.Context, query string, candidates []core.ScoredFragment, topK int) ([]core.ScoredFragment, error) {
	if len(candidates) == 0 {
		return []core.ScoredFragment{}, nil
	}

	passages := make([]string, len(candidates))
	for i, candidate := range candidates {
		passages[i] = candidate.Text
	}

	scores, err := r.reranker.Score(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to rerank candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: expected %d rerank scores, received %d",
			ai.ErrModelUnavailable, len(candidates), len(scores))
	}

	reranked := make([]core.ScoredFragment, len(candidates))
	for i, candidate := range candidates {
		reranked[i] = core.ScoredFragment{Fragment: candidate.Fragment, Score: scores[i]}
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	if len(reranked) > topK {
		reranked = reranked[:topK]
	}
	return reranked, nil
}
