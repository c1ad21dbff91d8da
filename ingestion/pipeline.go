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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/corpus"
	"github.com/poiesic/docchat/embedding"
)

// Pipeline chunks documents and warms the embedding cache for them. It
// manages a worker pool so documents embed concurrently.
type Pipeline struct {
	cache    *embedding.Cache
	chunking corpus.ChunkConfig
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunking sets the chunking configuration applied to every document.
// Default is corpus.DefaultChunkConfig().
func WithChunking(cfg corpus.ChunkConfig) Option {
	return func(p *Pipeline) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.chunking = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over an embedding cache.
func NewPipeline(cache *embedding.Cache, opts ...Option) (*Pipeline, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cache:    cache,
		chunking: corpus.DefaultChunkConfig(),
		pool:     pool,
		logger:   slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest chunks the documents into one merged corpus and warms the embedding
// cache for each document on the worker pool. The merged corpus is returned
// even when some documents fail to embed; the joined error reports every
// failure.
func (p *Pipeline) Ingest(ctx context.Context, docs ...corpus.Document) ([]core.Fragment, error) {
	merged, err := corpus.Merge(docs, p.chunking)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return merged, nil
	}

	groups := groupByDocument(merged)
	p.logger.Info("ingesting documents", "documents", len(groups), "fragments", len(merged))

	var wg sync.WaitGroup
	errs := make([]error, len(groups))
	for i := range groups {
		i := i
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if _, err := p.cache.EmbedFragments(ctx, groups[i]); err != nil {
				p.logger.Error("failed to embed document",
					"document", groups[i][0].DocumentID, "err", err)
				errs[i] = err
			}
		})
		if submitErr != nil {
			errs[i] = submitErr
			wg.Done()
		}
	}
	wg.Wait()

	return merged, errors.Join(errs...)
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// groupByDocument splits a merged corpus into per-document fragment lists,
// preserving first-seen order.
func groupByDocument(fragments []core.Fragment) [][]core.Fragment {
	index := make(map[core.DocumentID]int)
	var groups [][]core.Fragment
	for _, f := range fragments {
		i, ok := index[f.DocumentID]
		if !ok {
			i = len(groups)
			index[f.DocumentID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], f)
	}
	return groups
}
