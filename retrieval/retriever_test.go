package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/docchat/ai/mock"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/corpus"
	"github.com/poiesic/docchat/embedding"
	"github.com/poiesic/docchat/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetriever(t *testing.T, opts ...Option) (*Retriever, *mock.MockEmbedder, *mock.MockReranker) {
	t.Helper()
	store, err := storage.NewDirStore(t.TempDir())
	require.NoError(t, err)
	embedder := mock.NewMockEmbedder()
	embedder.Dim = 16
	cache, err := embedding.NewCache(embedder, store)
	require.NoError(t, err)
	reranker := mock.NewMockReranker()
	retriever, err := NewRetriever(cache, reranker, opts...)
	require.NoError(t, err)
	return retriever, embedder, reranker
}

func chunkedCorpus(t *testing.T, name string, words int) []core.Fragment {
	t.Helper()
	wordList := make([]string, words)
	for i := range wordList {
		wordList[i] = fmt.Sprintf("%s%d", strings.TrimSuffix(name, ".txt"), i)
	}
	fragments, err := corpus.ChunkText(
		strings.Join(wordList, " "),
		core.DocumentIDFor(name, int64(words)),
		name,
		corpus.ChunkConfig{ChunkSize: 4, Overlap: 2},
	)
	require.NoError(t, err)
	return fragments
}

// recordingMonitor captures every stage callback for assertions.
type recordingMonitor struct {
	query      string
	corpusSize int
	filtered   int
	queryDim   int
	candidates []core.ScoredFragment
	results    []core.ScoredFragment
}

func (m *recordingMonitor) Start(query string, corpusSize int) {
	m.query = query
	m.corpusSize = corpusSize
}
func (m *recordingMonitor) AfterDocumentFilter(remaining int) { m.filtered = remaining }
func (m *recordingMonitor) AfterQueryEmbedding(dim int)       { m.queryDim = dim }
func (m *recordingMonitor) AfterSemanticSearch(candidates []core.ScoredFragment) {
	m.candidates = candidates
}
func (m *recordingMonitor) Finish(results []core.ScoredFragment) { m.results = results }

func TestNewRetriever(t *testing.T) {
	store, err := storage.NewDirStore(t.TempDir())
	require.NoError(t, err)
	cache, err := embedding.NewCache(mock.NewMockEmbedder(), store)
	require.NoError(t, err)

	t.Run("nil cache", func(t *testing.T) {
		_, err := NewRetriever(nil, mock.NewMockReranker())
		assert.Equal(t, ErrCacheRequired, err)
	})

	t.Run("nil reranker", func(t *testing.T) {
		_, err := NewRetriever(cache, nil)
		assert.Equal(t, ErrRerankerRequired, err)
	})

	t.Run("invalid candidate count", func(t *testing.T) {
		_, err := NewRetriever(cache, mock.NewMockReranker(), WithCandidateCount(0))
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("candidate pool narrows to top k", func(t *testing.T) {
		retriever, _, reranker := newTestRetriever(t)

		// 58 words at chunk size 4 with overlap 2 yields 28 fragments.
		fragments := chunkedCorpus(t, "paper.txt", 58)
		require.Len(t, fragments, 28)

		var pooled int
		reranker.ScoreFunc = func(ctx context.Context, query string, passages []string) ([]float32, error) {
			pooled = len(passages)
			scores := make([]float32, len(passages))
			for i := range scores {
				scores[i] = float32(i)
			}
			return scores, nil
		}

		results, err := retriever.Retrieve(ctx, "what does the paper conclude?", fragments, 3)
		require.NoError(t, err)
		assert.Len(t, results, 3)
		assert.Equal(t, DefaultCandidateCount, pooled, "reranker sees the semantic pool, not the corpus")
	})

	t.Run("results ordered by rerank score", func(t *testing.T) {
		retriever, _, reranker := newTestRetriever(t)
		fragments := chunkedCorpus(t, "paper.txt", 20)

		// Reverse the semantic order so the rerank stage must re-sort.
		reranker.ScoreFunc = func(ctx context.Context, query string, passages []string) ([]float32, error) {
			scores := make([]float32, len(passages))
			for i := range scores {
				scores[i] = float32(len(passages) - i)
			}
			return scores, nil
		}

		results, err := retriever.Retrieve(ctx, "query", fragments, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		for i := 1; i < len(results); i++ {
			assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
		}
	})

	t.Run("pool widens when top k exceeds candidates", func(t *testing.T) {
		retriever, _, reranker := newTestRetriever(t, WithCandidateCount(2))
		fragments := chunkedCorpus(t, "paper.txt", 20)

		var pooled int
		reranker.ScoreFunc = func(ctx context.Context, query string, passages []string) ([]float32, error) {
			pooled = len(passages)
			return make([]float32, len(passages)), nil
		}

		results, err := retriever.Retrieve(ctx, "query", fragments, 4)
		require.NoError(t, err)
		assert.Len(t, results, 4)
		assert.Equal(t, 4, pooled, "pool must be at least top k wide")
	})

	t.Run("corpus smaller than top k", func(t *testing.T) {
		retriever, _, _ := newTestRetriever(t)
		fragments := chunkedCorpus(t, "note.txt", 4)
		require.Len(t, fragments, 1)

		results, err := retriever.Retrieve(ctx, "query", fragments, 3)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("empty corpus touches no model", func(t *testing.T) {
		retriever, embedder, reranker := newTestRetriever(t)

		results, err := retriever.Retrieve(ctx, "query", nil, 3)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Zero(t, embedder.TextCalls())
		assert.Zero(t, embedder.BatchCalls())
		assert.Zero(t, reranker.CallCount())
	})

	t.Run("document filter", func(t *testing.T) {
		retriever, _, _ := newTestRetriever(t)
		alpha := chunkedCorpus(t, "alpha.txt", 12)
		beta := chunkedCorpus(t, "beta.txt", 12)
		merged := append(alpha, beta...)

		results, err := retriever.Retrieve(ctx, "query", merged, 10,
			WithDocument(alpha[0].DocumentID))
		require.NoError(t, err)
		require.NotEmpty(t, results)
		for _, result := range results {
			assert.Equal(t, alpha[0].DocumentID, result.DocumentID)
		}
	})

	t.Run("filter emptying the corpus touches no model", func(t *testing.T) {
		retriever, embedder, reranker := newTestRetriever(t)
		fragments := chunkedCorpus(t, "alpha.txt", 12)

		results, err := retriever.Retrieve(ctx, "query", fragments, 3,
			WithDocument(core.DocumentID("00000000")))
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Zero(t, embedder.TextCalls())
		assert.Zero(t, embedder.BatchCalls())
		assert.Zero(t, reranker.CallCount())
	})

	t.Run("invalid top k", func(t *testing.T) {
		retriever, _, _ := newTestRetriever(t)
		_, err := retriever.Retrieve(ctx, "query", chunkedCorpus(t, "a.txt", 8), 0)
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		retriever, embedder, _ := newTestRetriever(t)
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, fmt.Errorf("embedding model down")
		}

		_, err := retriever.Retrieve(ctx, "query", chunkedCorpus(t, "a.txt", 8), 3)
		assert.ErrorContains(t, err, "failed to embed corpus")
	})

	t.Run("rerank failure propagates", func(t *testing.T) {
		retriever, _, reranker := newTestRetriever(t)
		reranker.ScoreFunc = func(ctx context.Context, query string, passages []string) ([]float32, error) {
			return nil, fmt.Errorf("rerank model down")
		}

		_, err := retriever.Retrieve(ctx, "query", chunkedCorpus(t, "a.txt", 20), 3)
		assert.ErrorContains(t, err, "failed to rerank")
	})

	t.Run("short rerank response rejected", func(t *testing.T) {
		retriever, _, reranker := newTestRetriever(t)
		reranker.ScoreFunc = func(ctx context.Context, query string, passages []string) ([]float32, error) {
			return []float32{0.5}, nil
		}

		_, err := retriever.Retrieve(ctx, "query", chunkedCorpus(t, "a.txt", 20), 3)
		assert.ErrorContains(t, err, "rerank scores")
	})

	t.Run("monitor observes every stage", func(t *testing.T) {
		retriever, _, _ := newTestRetriever(t)
		fragments := chunkedCorpus(t, "paper.txt", 20)

		monitor := &recordingMonitor{}
		results, err := retriever.Retrieve(ctx, "the query", fragments, 3, WithMonitor(monitor))
		require.NoError(t, err)

		assert.Equal(t, "the query", monitor.query)
		assert.Equal(t, len(fragments), monitor.corpusSize)
		assert.Equal(t, len(fragments), monitor.filtered)
		assert.Equal(t, 16, monitor.queryDim)
		assert.Len(t, monitor.candidates, DefaultCandidateCount)
		assert.Equal(t, results, monitor.results)
	})
}
