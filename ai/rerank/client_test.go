package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/docchat/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(host string) *ai.Config {
	return ai.NewConfig(ai.WithRerankHost(host))
}

func TestClientScore(t *testing.T) {
	t.Run("scores mapped back to input order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/rerank", r.URL.Path)

			var req rerankRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "what is a fox", req.Query)
			require.Len(t, req.Texts, 3)

			// Respond out of order, as rank-sorted services do.
			json.NewEncoder(w).Encode([]rerankResult{
				{Index: 2, Score: 0.97},
				{Index: 0, Score: 0.41},
				{Index: 1, Score: 0.12},
			})
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		scores, err := client.Score(context.Background(), "what is a fox", []string{"a", "b", "c"})
		require.NoError(t, err)
		assert.Equal(t, []float32{0.41, 0.12, 0.97}, scores)
	})

	t.Run("empty passages make no request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("unexpected request")
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		scores, err := client.Score(context.Background(), "query", nil)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("service error surfaces as model unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		_, err = client.Score(context.Background(), "query", []string{"a"})
		assert.ErrorIs(t, err, ai.ErrModelUnavailable)
	})

	t.Run("unreachable service surfaces as model unavailable", func(t *testing.T) {
		client, err := NewClient(testConfig("http://127.0.0.1:1"))
		require.NoError(t, err)

		_, err = client.Score(context.Background(), "query", []string{"a"})
		assert.ErrorIs(t, err, ai.ErrModelUnavailable)
	})

	t.Run("out of range index rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]rerankResult{{Index: 7, Score: 0.5}})
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		_, err = client.Score(context.Background(), "query", []string{"a", "b"})
		assert.ErrorIs(t, err, ai.ErrModelUnavailable)
	})

	t.Run("missing score rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]rerankResult{{Index: 0, Score: 0.5}})
		}))
		defer server.Close()

		client, err := NewClient(testConfig(server.URL))
		require.NoError(t, err)

		_, err = client.Score(context.Background(), "query", []string{"a", "b"})
		assert.ErrorIs(t, err, ai.ErrModelUnavailable)
	})
}
