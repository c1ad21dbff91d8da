package retrieval

import (
	"testing"

	"github.com/poiesic/docchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyFragment(index int, text string) core.Fragment {
	return core.Fragment{
		Text:         text,
		Page:         core.PageUnknown,
		ChunkIndex:   index,
		DocumentID:   "deadbeef",
		DocumentName: "doc.txt",
		StartWord:    index * 10,
		EndWord:      index*10 + 10,
	}
}

func TestLegacySearch(t *testing.T) {
	fragments := []core.Fragment{
		legacyFragment(0, "the mitochondria is the powerhouse of the cell"),
		legacyFragment(1, "cell membranes regulate transport"),
		legacyFragment(2, "unrelated text about medieval castles"),
	}

	t.Run("ranks by keyword overlap", func(t *testing.T) {
		results := LegacySearch("powerhouse of the cell", fragments, 10)
		require.Len(t, results, 3)
		assert.Equal(t, 0, results[0].ChunkIndex)
		assert.Equal(t, 1, results[1].ChunkIndex)
		assert.Greater(t, results[0].Score, results[1].Score)
		assert.Zero(t, results[2].Score)
	})

	t.Run("zero-overlap fragments rank last in corpus order", func(t *testing.T) {
		results := LegacySearch("powerhouse", fragments, 10)
		require.Len(t, results, 3)
		assert.Equal(t, 0, results[0].ChunkIndex)
		assert.Equal(t, 1, results[1].ChunkIndex)
		assert.Equal(t, 2, results[2].ChunkIndex)
		assert.Zero(t, results[1].Score)
		assert.Zero(t, results[2].Score)
	})

	t.Run("punctuation and case insensitive", func(t *testing.T) {
		results := LegacySearch("CASTLES, Medieval!", fragments, 10)
		require.Len(t, results, 3)
		assert.Equal(t, 2, results[0].ChunkIndex)
	})

	t.Run("truncates to topK", func(t *testing.T) {
		results := LegacySearch("the cell", fragments, 1)
		assert.Len(t, results, 1)
	})

	t.Run("no shared tokens still fills topK", func(t *testing.T) {
		results := LegacySearch("quantum chromodynamics", fragments, 3)
		require.Len(t, results, 3)
		for i, result := range results {
			assert.Zero(t, result.Score)
			assert.Equal(t, i, result.ChunkIndex, "zero-scored fragments keep corpus order")
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		assert.Empty(t, LegacySearch("anything", nil, 10))
	})
}
