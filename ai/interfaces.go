package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string,
	// typically a user query. Returns an error if generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. Batch processing is more efficient than calling EmbedText
	// repeatedly. The returned slice contains embeddings in the same order
	// as the input texts. Returns an error if any embedding fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores query-passage pairs with a cross-encoder model, which
// jointly encodes the query and passage rather than encoding them
// independently. Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Score returns one relevance score per passage, in input order.
	// Higher scores mean higher relevance to the query. The caller is
	// responsible for ordering and truncation.
	Score(ctx context.Context, query string, passages []string) ([]float32, error)
}

// Generator produces a natural-language answer from a fully composed prompt.
// The prompt text is the only contract; streaming and request transport are
// implementation concerns.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider aggregates model services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder, Reranker,
// and Generator instances, ensuring they share configuration.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Reranker returns the cross-encoder reranking service.
	Reranker() Reranker

	// Generator returns the answer generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider should not be used.
	Close() error
}
