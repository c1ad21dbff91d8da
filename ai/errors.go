package ai

import "errors"

var (
	// ErrModelUnavailable indicates an embedding, rerank, or generation
	// model failed to initialize or run. Fatal for the calling operation;
	// never silently degraded to an unscored ranking.
	ErrModelUnavailable = errors.New("model unavailable")
)
