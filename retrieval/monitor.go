package retrieval

import "github.com/poiesic/docchat/core"

// RetrievalMonitor observes the stages of a single Retrieve call. All
// methods are invoked synchronously from the retrieving goroutine.
type RetrievalMonitor interface {
	// Start is called once with the query and the full corpus size.
	Start(query string, corpusSize int)

	// AfterDocumentFilter reports the corpus size after an optional
	// document filter was applied.
	AfterDocumentFilter(remaining int)

	// AfterQueryEmbedding reports the dimensionality of the query vector.
	AfterQueryEmbedding(dim int)

	// AfterSemanticSearch receives the candidate pool in ranked order.
	AfterSemanticSearch(candidates []core.ScoredFragment)

	// Finish receives the final reranked results.
	Finish(results []core.ScoredFragment)
}

type noopMonitor struct{}

func (noopMonitor) Start(string, int)                        {}
func (noopMonitor) AfterDocumentFilter(int)                  {}
func (noopMonitor) AfterQueryEmbedding(int)                  {}
func (noopMonitor) AfterSemanticSearch([]core.ScoredFragment) {}
func (noopMonitor) Finish([]core.ScoredFragment)             {}
