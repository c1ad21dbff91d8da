package mock

import (
	"context"
	"strings"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// ScoreFunc is called by Score if set.
	// If nil, scores by token overlap between query and passage.
	ScoreFunc func(ctx context.Context, query string, passages []string) ([]float32, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default token-overlap scoring.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Score returns one relevance score per passage, in input order.
func (m *MockReranker) Score(ctx context.Context, query string, passages []string) ([]float32, error) {
	m.callCount++

	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, query, passages)
	}

	scores := make([]float32, len(passages))
	queryTokens := tokenSet(query)
	for i, passage := range passages {
		scores[i] = overlapScore(queryTokens, tokenSet(passage))
	}
	return scores, nil
}

// CallCount returns the number of Score invocations.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.ScoreFunc = nil
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(word, ".,!?;:'\"-()[]{}")] = true
	}
	return set
}

// overlapScore returns the fraction of query tokens present in the passage.
func overlapScore(query, passage map[string]bool) float32 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for token := range query {
		if passage[token] {
			hits++
		}
	}
	return float32(hits) / float32(len(query))
}
