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


package openai

import (
	"log/slog"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/ai/rerank"
)

// Provider implements ai.Provider using OpenAI-compatible embedding and
// generation services plus a cross-encoder rerank endpoint. All services are
// created once and treated as read-only afterwards.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	reranker  ai.Reranker
	generator *Generator
	logger    *slog.Logger
}

// NewProvider creates a new model provider. The config is validated and
// normalized before use; any service that fails to initialize makes the
// whole provider construction fail with ai.ErrModelUnavailable.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to service-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	reranker, err := rerank.NewClient(config)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		reranker:  reranker,
		generator: generator,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Reranker returns the cross-encoder reranking service.
func (p *Provider) Reranker() ai.Reranker {
	return p.reranker
}

// Generator returns the answer generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
