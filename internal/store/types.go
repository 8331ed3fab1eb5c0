// Package store builds and caches the chunk index.
//
// An Index is built once per (corpus, chunking configuration) pair,
// content-addressed by a hash over both, and treated as immutable
// afterwards: concurrent queries share it without locking.
package store

import (
	"github.com/cascade-search/cascade/internal/chunk"
)

// Index is the read-only retrieval index over a corpus snapshot.
type Index struct {
	// Key is the content hash this index was built under.
	Key string `json:"key"`

	// Chunks maps chunk id to chunk.
	Chunks map[string]*chunk.Chunk `json:"chunks"`

	// Order lists chunk ids in build order, the tie-break order for
	// lexical scoring.
	Order []string `json:"order"`

	// Postings maps a term to the chunk ids containing it, in build order.
	Postings map[string][]string `json:"postings"`

	// TF maps term -> chunk id -> occurrence count.
	TF map[string]map[string]int `json:"tf"`

	// DF maps a term to the number of documents containing it.
	DF map[string]int `json:"df"`

	// ChunkLen maps chunk id to its base token count. Compound tokens
	// add postings but never inflate chunk length.
	ChunkLen map[string]int `json:"chunk_len"`

	// DocChunks maps document id to its chunk ids in document order.
	DocChunks map[string][]string `json:"doc_chunks"`

	// DocOrder lists document ids in corpus order.
	DocOrder []string `json:"doc_order"`

	// DocTitles maps document id to title, for result presentation.
	DocTitles map[string]string `json:"doc_titles"`

	// Vectors holds precomputed chunk embeddings when the build was
	// configured to embed chunks. May be empty.
	Vectors map[string][]float32 `json:"vectors,omitempty"`
}

// NumChunks returns the number of indexed chunks.
func (ix *Index) NumChunks() int {
	return len(ix.Order)
}

// NumDocuments returns the number of indexed documents.
func (ix *Index) NumDocuments() int {
	return len(ix.DocOrder)
}

// Chunk returns the chunk with the given id, or nil.
func (ix *Index) Chunk(id string) *chunk.Chunk {
	return ix.Chunks[id]
}

// TermFrequency returns how often term occurs in the chunk.
func (ix *Index) TermFrequency(term, chunkID string) int {
	return ix.TF[term][chunkID]
}

// Neighbors returns up to window chunk ids on each side of the chunk,
// in document order and including the chunk itself. Expansion follows
// the chunker's prev/next links, so neighbors stay at the chunk's own
// granularity level; on a hierarchical index a paragraph never pulls
// in the overview or a section.
func (ix *Index) Neighbors(chunkID string, window int) []string {
	ch := ix.Chunks[chunkID]
	if ch == nil {
		return nil
	}

	var before []string
	cur := ch
	for i := 0; i < window; i++ {
		prev := ix.Chunks[cur.PrevID]
		if prev == nil {
			break
		}
		before = append(before, prev.ID)
		cur = prev
	}

	out := make([]string, 0, len(before)+1+window)
	for i := len(before) - 1; i >= 0; i-- {
		out = append(out, before[i])
	}
	out = append(out, chunkID)

	cur = ch
	for i := 0; i < window; i++ {
		next := ix.Chunks[cur.NextID]
		if next == nil {
			break
		}
		out = append(out, next.ID)
		cur = next
	}
	return out
}

// Stats summarizes the index for the stats command.
type Stats struct {
	Documents     int                `json:"documents"`
	Chunks        int                `json:"chunks"`
	Terms         int                `json:"terms"`
	ChunksByType  map[chunk.Type]int `json:"chunks_by_type"`
	ChunksByLevel map[int]int        `json:"chunks_by_level"`
	AvgChunkLen   float64            `json:"avg_chunk_len"`
	Vectors       int                `json:"vectors"`
}

// Stats computes corpus and index statistics.
func (ix *Index) Stats() Stats {
	s := Stats{
		Documents:     len(ix.DocOrder),
		Chunks:        len(ix.Order),
		Terms:         len(ix.Postings),
		ChunksByType:  make(map[chunk.Type]int),
		ChunksByLevel: make(map[int]int),
		Vectors:       len(ix.Vectors),
	}
	total := 0
	for _, id := range ix.Order {
		ch := ix.Chunks[id]
		s.ChunksByType[ch.Type]++
		s.ChunksByLevel[ch.Level]++
		total += ix.ChunkLen[id]
	}
	if len(ix.Order) > 0 {
		s.AvgChunkLen = float64(total) / float64(len(ix.Order))
	}
	return s
}
