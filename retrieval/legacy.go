package retrieval

import (
	"sort"

	"github.com/poiesic/docchat/core"
)

// LegacySearch ranks fragments by keyword overlap with the query, highest
// score first, without any model call. It exists as a fallback for
// environments where no embedding model is reachable. Every fragment is
// scored and kept, so a query sharing no token with the corpus still yields
// topK zero-scored fragments in corpus order; only an empty corpus yields an
// empty result.
func LegacySearch(query string, fragments []core.Fragment, topK int) []core.ScoredFragment {
	queryTokens := tokenSet(query)

	scored := make([]core.ScoredFragment, 0, len(fragments))
	for _, fragment := range fragments {
		scored = append(scored, core.ScoredFragment{
			Fragment: fragment,
			Score:    jaccard(queryTokens, tokenSet(fragment.Text)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK >= 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
