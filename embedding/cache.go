package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/storage"
)

// Cache memoizes fragment embeddings per document identity, in memory and
// through an injected VectorStore. It owns all cache entries; nothing else
// writes them.
type Cache struct {
	embedder ai.Embedder
	store    storage.VectorStore
	logger   *slog.Logger

	mu  sync.Mutex
	mem map[core.DocumentID][][]float32
}

// Option configures a Cache.
type Option func(*Cache) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCache creates an embedding cache over the given embedder and store.
func NewCache(embedder ai.Embedder, store storage.VectorStore, opts ...Option) (*Cache, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	c := &Cache{
		embedder: embedder,
		store:    store,
		logger:   slog.Default().With("component", "embedding-cache"),
		mem:      make(map[core.DocumentID][][]float32),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// EmbedFragments returns an embedding vector for every fragment, keyed by
// the fragment's corpus-wide address. Fragments are grouped by document
// identity: a document with a complete, size-matching cache entry never
// reaches the embedding model; any other document is embedded in one batch
// and persisted before this call returns.
//
// Distinct documents may be embedded concurrently; writes to the same
// identity resolve last-writer-wins.
func (c *Cache) EmbedFragments(ctx context.Context, fragments []core.Fragment) (map[core.FragmentKey][]float32, error) {
	order, groups := groupByDocument(fragments)

	result := make(map[core.FragmentKey][]float32, len(fragments))
	for _, id := range order {
		group := groups[id]
		vectors, err := c.vectorsFor(ctx, id, group)
		if err != nil {
			return nil, err
		}
		for i, fragment := range group {
			result[fragment.Key()] = vectors[i]
		}
	}
	return result, nil
}

// EmbedQuery embeds a single query string. Queries are never cached.
func (c *Cache) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embedder.EmbedText(ctx, text)
}

// vectorsFor resolves one document's vectors: memory, then disk, then the
// embedding model. A disk entry whose vector count does not match the
// fragment list is discarded and fully recomputed.
func (c *Cache) vectorsFor(ctx context.Context, id core.DocumentID, fragments []core.Fragment) ([][]float32, error) {
	c.mu.Lock()
	cached, ok := c.mem[id]
	c.mu.Unlock()
	if ok && len(cached) == len(fragments) {
		return cached, nil
	}

	vectors, err := c.store.Load(id)
	switch {
	case err == nil && len(vectors) == len(fragments):
		c.remember(id, vectors)
		return vectors, nil
	case err == nil:
		c.logger.Warn("cache entry size mismatch, recomputing",
			"document", id, "cached", len(vectors), "fragments", len(fragments))
	case errors.Is(err, storage.ErrNotFound):
		c.logger.Debug("no cache entry, computing embeddings", "document", id)
	default:
		c.logger.Warn("discarding unreadable cache entry", "document", id, "err", err)
	}

	texts := make([]string, len(fragments))
	for i, fragment := range fragments {
		texts[i] = fragment.Text
	}

	c.logger.Info("computing embeddings", "document", id, "fragments", len(texts))
	vectors, err = c.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d, received %d", len(texts), len(vectors))
	}

	// A failed write only costs a recompute on the next run; cache content
	// is reproducible from source.
	if err := c.store.Save(id, vectors); err != nil {
		c.logger.Error("failed to persist cache entry", "document", id, "err", err)
	}

	c.remember(id, vectors)
	return vectors, nil
}

func (c *Cache) remember(id core.DocumentID, vectors [][]float32) {
	c.mu.Lock()
	c.mem[id] = vectors
	c.mu.Unlock()
}

// groupByDocument splits a corpus by document identity, preserving both
// first-seen document order and fragment order within each document.
func groupByDocument(fragments []core.Fragment) ([]core.DocumentID, map[core.DocumentID][]core.Fragment) {
	var order []core.DocumentID
	groups := make(map[core.DocumentID][]core.Fragment)
	for _, f := range fragments {
		if _, ok := groups[f.DocumentID]; !ok {
			order = append(order, f.DocumentID)
		}
		groups[f.DocumentID] = append(groups[f.DocumentID], f)
	}
	return order, groups
}
