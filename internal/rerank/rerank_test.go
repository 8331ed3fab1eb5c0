package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopReranker(t *testing.T) {
	r := NewNoopReranker()

	assert.False(t, r.Available(context.Background()))

	scores, err := r.Rerank(context.Background(), "query", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, scores)
	assert.NoError(t, r.Close())
}

func TestHTTPRerankerMapsScoresToInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/rerank":
			var req rerankRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "bà triệu", req.Query)

			// Respond ranked best-first, not in input order.
			resp := rerankResponse{Results: []rerankResult{
				{Index: 2, Score: 0.9},
				{Index: 0, Score: 0.5},
				{Index: 1, Score: 0.1},
			}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	r := NewHTTPReranker(Config{Endpoint: server.URL})
	defer r.Close()

	require.True(t, r.Available(context.Background()))

	scores, err := r.Rerank(context.Background(), "bà triệu", []string{"d0", "d1", "d2"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.1, 0.9}, scores)
}

func TestHTTPRerankerUnreachable(t *testing.T) {
	r := NewHTTPReranker(Config{Endpoint: "http://127.0.0.1:1"})
	defer r.Close()

	assert.False(t, r.Available(context.Background()))
	_, err := r.Rerank(context.Background(), "q", []string{"a"})
	assert.Error(t, err)
}

func TestHTTPRerankerCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(rerankResponse{})
	}))
	defer server.Close()

	r := NewHTTPReranker(Config{Endpoint: server.URL})
	defer r.Close()

	_, err := r.Rerank(context.Background(), "q", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scores for")
}

func TestHTTPRerankerEmptyInput(t *testing.T) {
	r := NewHTTPReranker(Config{Endpoint: "http://127.0.0.1:1"})
	defer r.Close()

	scores, err := r.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}
