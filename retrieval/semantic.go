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
	"math"
	"sort"

	"github.com/poiesic/docchat/core"
)

// cosineEpsilon guards against division by zero for degenerate vectors.
const cosineEpsilon = 1e-8

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < cosineEpsilon {
		return 0
	}
	return float32(dot / denom)
}

// SemanticSearch scores every fragment with a vector against the query
// embedding and returns the topN most similar, highest score first.
// Fragments with no vector under their key are skipped. Ties keep corpus
// order. A topN of zero yields an empty result and a negative topN disables
// the cut; the Retriever always passes a pool size of at least one.
func SemanticSearch(query []float32, fragments []core.Fragment, vectors map[core.FragmentKey][]float32, topN int) []core.ScoredFragment {
	scored := make([]core.ScoredFragment, 0, len(fragments))
	for _, fragment := range fragments {
		vector, ok := vectors[fragment.Key()]
		if !ok {
			continue
		}
		scored = append(scored, core.ScoredFragment{
			Fragment: fragment,
			Score:    CosineSimilarity(query, vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN >= 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}
