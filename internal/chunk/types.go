// Package chunk splits documents into overlapping, typed retrieval units.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Chunk size defaults, in tokens.
const (
	DefaultChunkSize   = 256
	DefaultOverlapSize = 32
)

// Type tags the granularity of a chunk.
type Type string

const (
	TypeOverview   Type = "overview"
	TypeSection    Type = "section"
	TypeSubSection Type = "sub_section"
	TypeParagraph  Type = "paragraph"
	TypeFixed      Type = "fixed"
)

// Strategy selects how a document is split. Strategies are a closed set
// dispatched by a single switch, not an interface hierarchy.
type Strategy string

const (
	// StrategySemantic splits on heading markers, one chunk per section.
	StrategySemantic Strategy = "semantic"
	// StrategyHierarchical emits overview, section, and paragraph chunks
	// for the same document, tagged with their level.
	StrategyHierarchical Strategy = "hierarchical"
	// StrategyHybrid splits semantically, then re-splits oversized
	// sections with fixed-size sliding windows.
	StrategyHybrid Strategy = "hybrid"
	// StrategyFixed slides a fixed-size window over the whole document,
	// ignoring structure.
	StrategyFixed Strategy = "fixed"
)

// Document is an immutable input text.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Chunk is the atomic retrieval unit: a contiguous, typed sub-span of a
// document. Start/End are byte offsets into the parent document and never
// split a token.
type Chunk struct {
	ID    string `json:"id"`
	DocID string `json:"doc_id"`
	Type  Type   `json:"type"`

	// Level is the granularity level: 0 overview, 1 section,
	// 2 sub-section or window, 3 paragraph.
	Level int `json:"level"`

	// Index is the chunk's position among its document's chunks.
	Index int `json:"index"`

	Start   int    `json:"start"`
	End     int    `json:"end"`
	Content string `json:"content"`

	// SectionTitle is the enclosing heading, when the strategy knows it.
	SectionTitle string `json:"section_title,omitempty"`

	// PrevID/NextID link neighboring chunks of the same level for
	// context-window expansion.
	PrevID string `json:"prev_id,omitempty"`
	NextID string `json:"next_id,omitempty"`
}

// generateChunkID derives a stable content-addressed chunk id:
// the first 16 hex characters of SHA256(docID, type, start, content).
// The type participates because hierarchical chunking emits chunks of
// different granularities over the identical span.
func generateChunkID(docID string, typ Type, start int, content string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%s", docID, typ, start, content)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// levelForType maps a chunk type to its granularity level.
func levelForType(t Type) int {
	switch t {
	case TypeOverview:
		return 0
	case TypeSection:
		return 1
	case TypeSubSection, TypeFixed:
		return 2
	case TypeParagraph:
		return 3
	default:
		return 2
	}
}
