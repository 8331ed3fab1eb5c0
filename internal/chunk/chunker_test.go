package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordsOfLen(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestShortDocumentYieldsSingleOverview(t *testing.T) {
	doc := &Document{ID: "d1", Title: "Short", Content: "just a few words here"}

	for _, strategy := range []Strategy{StrategySemantic, StrategyHierarchical, StrategyHybrid, StrategyFixed} {
		t.Run(string(strategy), func(t *testing.T) {
			c := NewChunker(Options{Strategy: strategy, ChunkSize: 256, OverlapSize: 32})
			chunks := c.Chunk(doc)

			require.Len(t, chunks, 1)
			assert.Equal(t, TypeOverview, chunks[0].Type)
			assert.Equal(t, doc.Content, chunks[0].Content)
			assert.Equal(t, "d1", chunks[0].DocID)
		})
	}
}

func TestEmptyDocumentYieldsNoChunks(t *testing.T) {
	c := NewChunker(Options{Strategy: StrategyFixed})

	assert.Empty(t, c.Chunk(&Document{ID: "d1", Content: ""}))
	assert.Empty(t, c.Chunk(&Document{ID: "d2", Content: "   \n\t  "}))
}

func TestFixedSlidingWindow(t *testing.T) {
	c := NewChunker(Options{Strategy: StrategyFixed, ChunkSize: 10, OverlapSize: 2})
	doc := &Document{ID: "d1", Content: wordsOfLen(25)}

	chunks := c.Chunk(doc)

	// Starts advance by chunk_size - overlap_size = 8: windows at 0, 8, 16, 24.
	require.Len(t, chunks, 4)
	for _, ch := range chunks {
		assert.Equal(t, TypeFixed, ch.Type)
	}

	// Every word is covered by at least one chunk.
	assertFullCoverage(t, doc, chunks)

	// Consecutive windows overlap.
	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].Start, chunks[i-1].End, "window %d should overlap its predecessor", i)
	}
}

func TestFixedWindowBoundariesNeverSplitWords(t *testing.T) {
	c := NewChunker(Options{Strategy: StrategyFixed, ChunkSize: 5, OverlapSize: 1})
	doc := &Document{ID: "d1", Content: wordsOfLen(17)}

	for _, ch := range c.Chunk(doc) {
		assert.False(t, strings.HasPrefix(ch.Content, " "))
		assert.False(t, strings.HasSuffix(ch.Content, " "))
		if ch.Start > 0 {
			assert.Equal(t, byte(' '), doc.Content[ch.Start-1])
		}
		if ch.End < len(doc.Content) {
			assert.Equal(t, byte(' '), doc.Content[ch.End])
		}
	}
}

func TestSemanticSplitsOnHeadings(t *testing.T) {
	content := "intro text before any heading " + wordsOfLen(10) + "\n" +
		"# First Section\nbody of the first section\n" +
		"## Nested\nnested body\n" +
		"# Second Section\nsecond body\n"
	doc := &Document{ID: "d1", Content: content}
	c := NewChunker(Options{Strategy: StrategySemantic, ChunkSize: 8, OverlapSize: 2})

	chunks := c.Chunk(doc)

	require.Len(t, chunks, 4)
	assert.Equal(t, TypeOverview, chunks[0].Type)
	assert.Equal(t, TypeSection, chunks[1].Type)
	assert.Equal(t, "First Section", chunks[1].SectionTitle)
	assert.Equal(t, TypeSubSection, chunks[2].Type)
	assert.Equal(t, "Nested", chunks[2].SectionTitle)
	assert.Equal(t, TypeSection, chunks[3].Type)

	// Document order is preserved.
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].Start, chunks[i-1].Start)
	}
}

func TestSemanticDropsEmptySections(t *testing.T) {
	// Blank preamble only; sections still emitted.
	content := "\n\n# A\nbody a\n# B\nbody b\n"
	doc := &Document{ID: "d1", Content: content}
	c := NewChunker(Options{Strategy: StrategySemantic, ChunkSize: 2, OverlapSize: 0})

	chunks := c.Chunk(doc)

	require.Len(t, chunks, 2)
	assert.Equal(t, "A", chunks[0].SectionTitle)
	assert.Equal(t, "B", chunks[1].SectionTitle)
}

func TestHybridResplitsOversizedSections(t *testing.T) {
	content := "# Big\n" + wordsOfLen(30) + "\n# Small\ntiny body\n"
	doc := &Document{ID: "d1", Content: content}
	c := NewChunker(Options{Strategy: StrategyHybrid, ChunkSize: 10, OverlapSize: 2})

	chunks := c.Chunk(doc)

	// The 31-token section splits into windows; the small section stays whole.
	require.Greater(t, len(chunks), 2)
	last := chunks[len(chunks)-1]
	assert.Equal(t, "Small", last.SectionTitle)
	assert.Equal(t, TypeSection, last.Type)

	for _, ch := range chunks[:len(chunks)-1] {
		assert.Equal(t, "Big", ch.SectionTitle)
	}

	assertFullCoverage(t, doc, chunks)
}

func TestHierarchicalEmitsAllLevels(t *testing.T) {
	content := "# One\nfirst paragraph body\n\nsecond paragraph body\n# Two\n" + wordsOfLen(10) + "\n"
	doc := &Document{ID: "d1", Content: content}
	c := NewChunker(Options{Strategy: StrategyHierarchical, ChunkSize: 8, OverlapSize: 2})

	chunks := c.Chunk(doc)

	byType := map[Type]int{}
	for _, ch := range chunks {
		byType[ch.Type]++
	}
	assert.Equal(t, 1, byType[TypeOverview])
	assert.Equal(t, 2, byType[TypeSection])
	assert.GreaterOrEqual(t, byType[TypeParagraph], 2)
}

func TestHierarchicalSameSpanChunksGetDistinctIDs(t *testing.T) {
	// A heading followed by exactly one paragraph trims the section and
	// the paragraph to the identical byte span; their ids must still
	// differ so the index can hold both granularities.
	content := "# A\nmột đoạn văn ngắn ở đây\n\n# B\nđoạn văn thứ hai ở đây\n"
	doc := &Document{ID: "d1", Content: content}
	c := NewChunker(Options{Strategy: StrategyHierarchical, ChunkSize: 4, OverlapSize: 0})

	chunks := c.Chunk(doc)

	seen := make(map[string]Type)
	sameSpan := false
	for _, ch := range chunks {
		prev, dup := seen[ch.ID]
		require.False(t, dup, "%s and %s chunks share id %s", prev, ch.Type, ch.ID)
		seen[ch.ID] = ch.Type
		for _, other := range chunks {
			if other != ch && other.Start == ch.Start && other.End == ch.End {
				sameSpan = true
			}
		}
	}
	// The collision-prone shape actually occurred.
	assert.True(t, sameSpan, "expected a section and a paragraph over the same span")

	byType := map[Type]int{}
	for _, ch := range chunks {
		byType[ch.Type]++
	}
	assert.Equal(t, 2, byType[TypeSection])
	assert.Equal(t, 2, byType[TypeParagraph])
}

func TestChunkIDsAreStable(t *testing.T) {
	doc := &Document{ID: "d1", Content: wordsOfLen(50)}
	c := NewChunker(Options{Strategy: StrategyFixed, ChunkSize: 10, OverlapSize: 2})

	first := c.Chunk(doc)
	second := c.Chunk(doc)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Len(t, first[i].ID, 16)
	}
}

func TestNeighborLinks(t *testing.T) {
	doc := &Document{ID: "d1", Content: wordsOfLen(30)}
	c := NewChunker(Options{Strategy: StrategyFixed, ChunkSize: 10, OverlapSize: 0})

	chunks := c.Chunk(doc)

	require.Len(t, chunks, 3)
	assert.Empty(t, chunks[0].PrevID)
	assert.Equal(t, chunks[0].ID, chunks[1].PrevID)
	assert.Equal(t, chunks[1].NextID, chunks[2].ID)
	assert.Empty(t, chunks[2].NextID)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
	}
}

// assertFullCoverage checks every word of the document falls inside at
// least one chunk's byte range.
func assertFullCoverage(t *testing.T, doc *Document, chunks []*Chunk) {
	t.Helper()
	for _, w := range scanWords(doc.Content) {
		covered := false
		for _, ch := range chunks {
			if ch.Start <= w.start && w.end <= ch.End {
				covered = true
				break
			}
		}
		assert.True(t, covered, "word %q at [%d,%d) not covered", doc.Content[w.start:w.end], w.start, w.end)
	}
}
