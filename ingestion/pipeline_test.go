package ingestion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/docchat/ai/mock"
	"github.com/poiesic/docchat/corpus"
	"github.com/poiesic/docchat/embedding"
	"github.com/poiesic/docchat/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *mock.MockEmbedder, *embedding.Cache) {
	t.Helper()
	store, err := storage.NewDirStore(t.TempDir())
	require.NoError(t, err)
	embedder := mock.NewMockEmbedder()
	embedder.Dim = 8
	cache, err := embedding.NewCache(embedder, store)
	require.NoError(t, err)

	opts = append([]Option{WithChunking(corpus.ChunkConfig{ChunkSize: 4, Overlap: 2})}, opts...)
	pipeline, err := NewPipeline(cache, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, embedder, cache
}

func testDocument(name string, words int) corpus.Document {
	wordList := make([]string, words)
	for i := range wordList {
		wordList[i] = fmt.Sprintf("%s%d", strings.TrimSuffix(name, ".txt"), i)
	}
	return corpus.Document{Name: name, Text: strings.Join(wordList, " ")}
}

func TestNewPipeline(t *testing.T) {
	t.Run("nil cache", func(t *testing.T) {
		_, err := NewPipeline(nil)
		assert.Equal(t, ErrCacheRequired, err)
	})

	t.Run("invalid chunking", func(t *testing.T) {
		store, err := storage.NewDirStore(t.TempDir())
		require.NoError(t, err)
		cache, err := embedding.NewCache(mock.NewMockEmbedder(), store)
		require.NoError(t, err)

		_, err = NewPipeline(cache, WithChunking(corpus.ChunkConfig{ChunkSize: 2, Overlap: 2}))
		assert.ErrorIs(t, err, corpus.ErrInvalidChunking)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("merges documents in order", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		merged, err := pipeline.Ingest(ctx, testDocument("alpha.txt", 10), testDocument("beta.txt", 6))
		require.NoError(t, err)
		require.Len(t, merged, 6) // 4 fragments from alpha, 2 from beta
		assert.Equal(t, "alpha.txt", merged[0].DocumentName)
		assert.Equal(t, "beta.txt", merged[4].DocumentName)
	})

	t.Run("warms the cache per document", func(t *testing.T) {
		pipeline, embedder, cache := newTestPipeline(t)

		merged, err := pipeline.Ingest(ctx, testDocument("alpha.txt", 10), testDocument("beta.txt", 6))
		require.NoError(t, err)
		assert.Equal(t, 2, embedder.BatchCalls())

		// Follow-up retrieval embedding is a pure cache hit.
		vectors, err := cache.EmbedFragments(ctx, merged)
		require.NoError(t, err)
		assert.Len(t, vectors, len(merged))
		assert.Equal(t, 2, embedder.BatchCalls())
	})

	t.Run("partial failure keeps the corpus", func(t *testing.T) {
		pipeline, embedder, _ := newTestPipeline(t, WithPoolSize(1))

		var mu sync.Mutex
		calls := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("embedding backend overloaded")
			}
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = make([]float32, 8)
			}
			return vectors, nil
		}

		merged, err := pipeline.Ingest(ctx, testDocument("alpha.txt", 10), testDocument("beta.txt", 6))
		assert.ErrorContains(t, err, "overloaded")
		assert.Len(t, merged, 6, "chunked corpus survives embedding failure")
	})

	t.Run("empty input", func(t *testing.T) {
		pipeline, embedder, _ := newTestPipeline(t)

		merged, err := pipeline.Ingest(ctx)
		require.NoError(t, err)
		assert.Empty(t, merged)
		assert.Zero(t, embedder.BatchCalls())
	})

	t.Run("page aware documents", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		doc := corpus.Document{
			Name:  "paged.txt",
			Pages: []string{"one two three four five", "six seven eight"},
		}
		merged, err := pipeline.Ingest(ctx, doc)
		require.NoError(t, err)
		require.NotEmpty(t, merged)
		assert.Equal(t, 1, merged[0].Page)
		assert.Equal(t, 2, merged[len(merged)-1].Page)
	})
}
