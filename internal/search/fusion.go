package search

import (
	"sort"

	"github.com/cascade-search/cascade/internal/config"
)

// fusedChunk is a final candidate with its per-stage score breakdown.
type fusedChunk struct {
	ChunkID   string
	Breakdown Breakdown
}

func scoreMap(candidates []Candidate) map[string]float64 {
	m := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		m[c.ChunkID] = c.Score
	}
	return m
}

// fuse combines per-stage scores into one fused score per final
// candidate by weighted linear sum over the stages that ran. Weights
// were normalized once at validation time; a degraded stage contributes
// nothing and the remaining weights are not renormalized per query.
func (e *Engine) fuse(final, stage1, stage2, stage3 []Candidate, ran2, ran3 bool, w config.StageWeights) []fusedChunk {
	lexical := scoreMap(stage1)
	var dense, rerank map[string]float64
	if ran2 {
		dense = scoreMap(stage2)
	}
	if ran3 {
		rerank = scoreMap(stage3)
	}

	out := make([]fusedChunk, len(final))
	for i, c := range final {
		b := Breakdown{Lexical: lexical[c.ChunkID]}
		b.Fused = w.Lexical * b.Lexical
		if ran2 {
			b.Dense = dense[c.ChunkID]
			b.Fused += w.Dense * b.Dense
		}
		if ran3 {
			b.Rerank = rerank[c.ChunkID]
			b.Fused += w.Rerank * b.Rerank
		}
		out[i] = fusedChunk{ChunkID: c.ChunkID, Breakdown: b}
	}
	return out
}

// sortFused orders fused chunks by fused score descending, breaking
// ties by index build order.
func (e *Engine) sortFused(chunks []fusedChunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].Breakdown.Fused != chunks[j].Breakdown.Fused {
			return chunks[i].Breakdown.Fused > chunks[j].Breakdown.Fused
		}
		return e.orderPos[chunks[i].ChunkID] < e.orderPos[chunks[j].ChunkID]
	})
}

// filterMinScore drops fused chunks below the threshold. A zero
// threshold keeps everything.
func filterMinScore(chunks []fusedChunk, minScore float64) []fusedChunk {
	if minScore <= 0 {
		return chunks
	}
	out := chunks[:0]
	for _, fc := range chunks {
		if fc.Breakdown.Fused >= minScore {
			out = append(out, fc)
		}
	}
	return out
}
