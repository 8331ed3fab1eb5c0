package search

import (
	"math"
	"sort"

	"github.com/cascade-search/cascade/internal/chunk"
	"github.com/cascade-search/cascade/internal/config"
)

// maxSupportingChunks bounds the supporting chunks attached per
// document result.
const maxSupportingChunks = 3

// previewRunes bounds the representative-chunk excerpt length.
const previewRunes = 160

// aggregateDocuments rolls fused chunk scores up to document results.
// The incoming chunks are already sorted by fused score descending, so
// each document's chunk list arrives best-first.
func (e *Engine) aggregateDocuments(chunks []fusedChunk, opts Options) []Result {
	byDoc := make(map[string][]fusedChunk)
	var docIDs []string
	for _, fc := range chunks {
		ch := e.ix.Chunk(fc.ChunkID)
		if ch == nil {
			continue
		}
		if _, ok := byDoc[ch.DocID]; !ok {
			docIDs = append(docIDs, ch.DocID)
		}
		byDoc[ch.DocID] = append(byDoc[ch.DocID], fc)
	}

	results := make([]Result, 0, len(docIDs))
	for _, docID := range docIDs {
		docChunks := byDoc[docID]
		best := docChunks[0]
		bestChunk := e.ix.Chunk(best.ChunkID)

		r := Result{
			DocID:    docID,
			DocTitle: e.ix.DocTitles[docID],
			ChunkID:  best.ChunkID,
			Score:    documentScore(docChunks, opts.Aggregation),
			Preview:  makePreview(bestChunk.Content),
		}
		for i := 0; i < len(docChunks) && i < maxSupportingChunks; i++ {
			if ch := e.ix.Chunk(docChunks[i].ChunkID); ch != nil {
				r.Chunks = append(r.Chunks, ch)
			}
		}
		if opts.Explain {
			b := best.Breakdown
			r.Breakdown = &b
		}
		results = append(results, r)
	}

	docPos := make(map[string]int, len(e.ix.DocOrder))
	for i, id := range e.ix.DocOrder {
		docPos[id] = i
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return docPos[results[i].DocID] < docPos[results[j].DocID]
	})
	return results
}

// documentScore combines a document's chunk scores, given best-first.
func documentScore(docChunks []fusedChunk, aggregation string) float64 {
	switch aggregation {
	case config.AggregationMean:
		sum := 0.0
		for _, fc := range docChunks {
			sum += fc.Breakdown.Fused
		}
		return sum / float64(len(docChunks))
	case config.AggregationWeightedSum:
		// Exponentially decaying weights over the document's chunks in
		// descending score order, normalized by the weight sum so a
		// document is not rewarded for merely having many chunks.
		var num, den float64
		for i, fc := range docChunks {
			w := math.Exp(-0.1 * float64(i))
			num += fc.Breakdown.Fused * w
			den += w
		}
		return num / den
	default: // config.AggregationMax
		// The best chunk's score verbatim.
		return docChunks[0].Breakdown.Fused
	}
}

// chunkResults returns one result per fused chunk.
func (e *Engine) chunkResults(chunks []fusedChunk, opts Options) []Result {
	results := make([]Result, 0, len(chunks))
	for _, fc := range chunks {
		ch := e.ix.Chunk(fc.ChunkID)
		if ch == nil {
			continue
		}
		r := Result{
			DocID:    ch.DocID,
			DocTitle: e.ix.DocTitles[ch.DocID],
			ChunkID:  fc.ChunkID,
			Score:    fc.Breakdown.Fused,
			Preview:  makePreview(ch.Content),
			Chunks:   []*chunk.Chunk{ch},
		}
		if opts.Explain {
			b := fc.Breakdown
			r.Breakdown = &b
		}
		results = append(results, r)
	}
	return results
}

// contextResults returns chunk results expanded with up to
// ContextWindow neighboring chunks on each side, in document order.
// A chunk already claimed by a higher-ranked result's window is not
// repeated.
func (e *Engine) contextResults(chunks []fusedChunk, opts Options) []Result {
	claimed := make(map[string]bool)
	results := make([]Result, 0, len(chunks))
	for _, fc := range chunks {
		ch := e.ix.Chunk(fc.ChunkID)
		if ch == nil {
			continue
		}
		r := Result{
			DocID:    ch.DocID,
			DocTitle: e.ix.DocTitles[ch.DocID],
			ChunkID:  fc.ChunkID,
			Score:    fc.Breakdown.Fused,
			Preview:  makePreview(ch.Content),
		}
		for _, id := range e.ix.Neighbors(fc.ChunkID, opts.ContextWindow) {
			if claimed[id] {
				continue
			}
			claimed[id] = true
			if neighbor := e.ix.Chunk(id); neighbor != nil {
				r.Chunks = append(r.Chunks, neighbor)
			}
		}
		if opts.Explain {
			b := fc.Breakdown
			r.Breakdown = &b
		}
		results = append(results, r)
	}
	return results
}

func makePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + "..."
}
