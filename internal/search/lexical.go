package search

import (
	"sort"

	cascerr "github.com/cascade-search/cascade/internal/errors"
)

// stage1Lexical generates the candidate set by normalized term
// frequency: for each query token present in a chunk, the chunk earns
// tf(token, chunk) / chunkLen(chunk). Chunks matching no token are
// excluded. This is the only stage that touches the whole corpus.
//
// A posting that references a chunk missing from the index means the
// index is corrupt; that fails the query rather than silently
// returning a partial candidate set.
func (e *Engine) stage1Lexical(tokens []string, topK int) ([]Candidate, error) {
	scores := make(map[string]float64)
	for _, tok := range tokens {
		for _, id := range e.ix.Postings[tok] {
			if e.ix.Chunks[id] == nil {
				return nil, cascerr.RetrievalError("postings reference unknown chunk "+id, nil).
					WithDetail("term", tok)
			}
			length := e.ix.ChunkLen[id]
			if length == 0 {
				continue
			}
			scores[id] += float64(e.ix.TF[tok][id]) / float64(length)
		}
	}

	candidates := make([]Candidate, 0, len(scores))
	for id, score := range scores {
		candidates = append(candidates, Candidate{ChunkID: id, Score: score})
	}
	e.sortCandidates(candidates)
	return truncate(candidates, topK), nil
}

// sortCandidates orders candidates by score descending, breaking ties
// by index build order so equal-scored chunks rank deterministically.
func (e *Engine) sortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return e.orderPos[candidates[i].ChunkID] < e.orderPos[candidates[j].ChunkID]
	})
}

func truncate(candidates []Candidate, topK int) []Candidate {
	if topK > 0 && len(candidates) > topK {
		return candidates[:topK]
	}
	return candidates
}
