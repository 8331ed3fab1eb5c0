package search

import (
	"context"

	"github.com/cascade-search/cascade/internal/embed"
)

// stage2Dense rescores the candidate set by cosine similarity between
// the query embedding and each candidate chunk's embedding. Chunk
// vectors precomputed at build time are reused; the rest are embedded
// on the fly.
//
// An unavailable embedder, an embedding error, or a stage timeout all
// degrade to a pass-through: the input is forwarded unchanged and ran
// is false. Degradation is logged, never surfaced as a query failure.
func (e *Engine) stage2Dense(ctx context.Context, query string, in []Candidate, opts Options) (out []Candidate, ran bool) {
	if e.embedder == nil || !e.embedder.Available(ctx) {
		e.logger.Warn("dense stage unavailable, passing candidates through",
			"candidates", len(in))
		return cloneCandidates(in), false
	}

	if opts.Stage2Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Stage2Timeout)
		defer cancel()
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed, passing candidates through",
			"error", err, "candidates", len(in))
		return cloneCandidates(in), false
	}

	vectors, err := e.candidateVectors(ctx, in)
	if err != nil {
		e.logger.Warn("chunk embedding failed, passing candidates through",
			"error", err, "candidates", len(in))
		return cloneCandidates(in), false
	}

	scored := make([]Candidate, len(in))
	for i, c := range in {
		scored[i] = Candidate{
			ChunkID: c.ChunkID,
			Score:   embed.Cosine(queryVec, vectors[c.ChunkID]),
		}
	}
	e.sortCandidates(scored)
	return truncate(scored, opts.Stage2TopK), true
}

// candidateVectors returns an embedding per candidate chunk, reading
// from the index's precomputed vectors and embedding only the misses.
func (e *Engine) candidateVectors(ctx context.Context, candidates []Candidate) (map[string][]float32, error) {
	vectors := make(map[string][]float32, len(candidates))

	var missIDs []string
	var missTexts []string
	for _, c := range candidates {
		if vec, ok := e.ix.Vectors[c.ChunkID]; ok {
			vectors[c.ChunkID] = vec
			continue
		}
		ch := e.ix.Chunk(c.ChunkID)
		if ch == nil {
			continue
		}
		missIDs = append(missIDs, c.ChunkID)
		missTexts = append(missTexts, ch.Content)
	}

	if len(missIDs) > 0 {
		embedded, err := e.embedder.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for i, id := range missIDs {
			vectors[id] = embedded[i]
		}
	}
	return vectors, nil
}
