package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/docchat/ai"
)

const defaultTimeout = 60 * time.Second

// Client implements ai.Reranker over a /rerank HTTP endpoint.
type Client struct {
	host   string
	model  string
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
// Default has a 60 second timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// newClient is an internal constructor that returns the concrete type.
func newClient(config *ai.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		host:   strings.TrimSuffix(config.RerankHost, "/"),
		model:  config.RerankModel,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: slog.Default().With("component", "rerank-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClient creates a cross-encoder rerank client from the provided
// configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewClient(config *ai.Config, opts ...Option) (ai.Reranker, error) {
	return newClient(config, opts...)
}

type rerankRequest struct {
	Model string   `json:"model,omitempty"`
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

// Score computes pairwise relevance scores for each passage against the
// query. Scores are returned in input order regardless of the order the
// service responds in.
func (c *Client) Score(ctx context.Context, query string, passages []string) ([]float32, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	c.logger.Debug("scoring passages", "count", len(passages))

	body, err := json.Marshal(rerankRequest{
		Model: c.model,
		Query: query,
		Texts: passages,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding rerank request: %w", ai.ErrModelUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrModelUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("rerank request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("rerank service returned error", "status", resp.StatusCode, "body", string(detail))
		return nil, fmt.Errorf("%w: rerank service returned status %d", ai.ErrModelUnavailable, resp.StatusCode)
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decoding rerank response: %w", ai.ErrModelUnavailable, err)
	}

	scores := make([]float32, len(passages))
	seen := make([]bool, len(passages))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(passages) {
			return nil, fmt.Errorf("%w: rerank result index %d out of range", ai.ErrModelUnavailable, r.Index)
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: rerank response missing score for passage %d", ai.ErrModelUnavailable, i)
		}
	}

	return scores, nil
}
