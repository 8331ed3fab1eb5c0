// Package rerank provides cross-encoder scoring clients for the final
// retrieval stage.
//
// Like the embedders, rerankers are a capability interface with a real
// HTTP implementation and a no-op variant; an unavailable service makes
// the stage a transparent pass-through, never a query failure.
package rerank

import (
	"context"
)

// Reranker scores (query, document) pairs with a cross-encoder model.
type Reranker interface {
	// Rerank returns one relevance score per document, in document
	// order (scores[i] belongs to documents[i]).
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)

	// Available checks if the reranker is ready.
	Available(ctx context.Context) bool

	// ModelName returns the model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}

// NoopReranker is the disabled variant. It reports itself unavailable
// so the rerank stage forwards its input unchanged.
type NoopReranker struct{}

var _ Reranker = (*NoopReranker)(nil)

// NewNoopReranker creates the no-op reranker.
func NewNoopReranker() *NoopReranker {
	return &NoopReranker{}
}

func (n *NoopReranker) Rerank(_ context.Context, _ string, documents []string) ([]float64, error) {
	scores := make([]float64, len(documents))
	return scores, nil
}

func (n *NoopReranker) Available(_ context.Context) bool { return false }

func (n *NoopReranker) ModelName() string { return "noop" }

func (n *NoopReranker) Close() error { return nil }
