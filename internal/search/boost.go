package search

import (
	"strings"

	"github.com/cascade-search/cascade/internal/chunk"
)

// Structural boost multipliers. Overviews and sections summarize, so
// they outrank body text at equal lexical score; fixed windows carry
// no structure and rank last.
var typeBoosts = map[chunk.Type]float64{
	chunk.TypeOverview:   1.3,
	chunk.TypeSection:    1.2,
	chunk.TypeParagraph:  1.0,
	chunk.TypeSubSection: 0.9,
	chunk.TypeFixed:      0.8,
}

// applyChunkBoost multiplies each fused score by a structural factor
// derived from the chunk's type, level, section title, and length.
// Only runs when chunk_boost is enabled.
func (e *Engine) applyChunkBoost(chunks []fusedChunk, query string) {
	queryLower := strings.ToLower(query)
	queryWords := strings.Fields(queryLower)

	for i := range chunks {
		ch := e.ix.Chunk(chunks[i].ChunkID)
		if ch == nil {
			continue
		}
		chunks[i].Breakdown.Fused *= boostFactor(ch, queryLower, queryWords)
	}
}

func boostFactor(ch *chunk.Chunk, queryLower string, queryWords []string) float64 {
	factor := 1.0
	if b, ok := typeBoosts[ch.Type]; ok {
		factor = b
	}

	switch ch.Level {
	case 0:
		factor *= 1.2
	case 1:
		factor *= 1.1
	}

	if ch.SectionTitle != "" {
		title := strings.ToLower(ch.SectionTitle)
		if strings.Contains(title, queryLower) {
			factor *= 1.4
		} else if overlap := wordOverlap(queryWords, title); overlap > 0 {
			factor *= 1.0 + 0.1*float64(overlap)
		}
	}

	switch words := len(strings.Fields(ch.Content)); {
	case words < 20:
		factor *= 0.8
	case words > 200:
		factor *= 0.95
	}
	return factor
}

// wordOverlap counts distinct query words appearing in the title.
func wordOverlap(queryWords []string, title string) int {
	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(title) {
		titleWords[w] = true
	}
	seen := make(map[string]bool)
	count := 0
	for _, w := range queryWords {
		if titleWords[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}
