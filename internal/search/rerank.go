package search

import (
	"context"
)

// stage3Rerank rescores the candidate set with a cross-encoder over
// (query, chunk content) pairs. Same degradation contract as the dense
// stage: unavailable service, request error, or timeout forwards the
// input unchanged with ran false.
func (e *Engine) stage3Rerank(ctx context.Context, query string, in []Candidate, opts Options) (out []Candidate, ran bool) {
	if e.reranker == nil || !e.reranker.Available(ctx) {
		e.logger.Warn("rerank stage unavailable, passing candidates through",
			"candidates", len(in))
		return cloneCandidates(in), false
	}

	if opts.Stage3Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Stage3Timeout)
		defer cancel()
	}

	documents := make([]string, len(in))
	for i, c := range in {
		if ch := e.ix.Chunk(c.ChunkID); ch != nil {
			documents[i] = ch.Content
		}
	}

	scores, err := e.reranker.Rerank(ctx, query, documents)
	if err != nil {
		e.logger.Warn("rerank failed, passing candidates through",
			"error", err, "candidates", len(in))
		return cloneCandidates(in), false
	}

	scored := make([]Candidate, len(in))
	for i, c := range in {
		scored[i] = Candidate{ChunkID: c.ChunkID, Score: scores[i]}
	}
	e.sortCandidates(scored)
	return truncate(scored, opts.Stage3TopK), true
}
