package chunk

import (
	"regexp"
	"strings"
	"unicode"
)

// headerPattern matches heading lines: # Title, ## Title, etc.
var headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Options configures the chunker. Sizes are in tokens.
type Options struct {
	Strategy    Strategy
	ChunkSize   int
	OverlapSize int
}

// Chunker splits documents into chunks under a configured strategy.
type Chunker struct {
	opts Options
}

// NewChunker creates a chunker, filling in default sizes.
func NewChunker(opts Options) *Chunker {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.OverlapSize < 0 || opts.OverlapSize >= opts.ChunkSize {
		opts.OverlapSize = DefaultOverlapSize
		if opts.OverlapSize >= opts.ChunkSize {
			opts.OverlapSize = opts.ChunkSize / 8
		}
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyHybrid
	}
	return &Chunker{opts: opts}
}

// Chunk splits a document into ordered chunks. A document shorter than
// the chunk size yields exactly one overview chunk. Sections with zero
// tokens are never emitted. Output order matches document order.
func (c *Chunker) Chunk(doc *Document) []*Chunk {
	words := scanWords(doc.Content)
	if len(words) == 0 {
		return nil
	}

	if len(words) <= c.opts.ChunkSize {
		single := c.newChunk(doc, TypeOverview, doc.Title, words[0].start, words[len(words)-1].end)
		return c.finalize(doc, []*Chunk{single})
	}

	var chunks []*Chunk
	switch c.opts.Strategy {
	case StrategySemantic:
		chunks = c.semantic(doc)
	case StrategyHierarchical:
		chunks = c.hierarchical(doc, words)
	case StrategyFixed:
		chunks = c.fixed(doc, words, TypeFixed, doc.Title)
	default:
		chunks = c.hybrid(doc)
	}
	return c.finalize(doc, chunks)
}

// semantic emits one chunk per structural section, typed by heading depth.
func (c *Chunker) semantic(doc *Document) []*Chunk {
	var chunks []*Chunk
	for _, sec := range parseSections(doc.Content) {
		ch := c.sectionChunk(doc, sec)
		if ch != nil {
			chunks = append(chunks, ch)
		}
	}
	return chunks
}

// hybrid splits semantically, then re-splits any section exceeding the
// chunk size with fixed-size sliding windows.
func (c *Chunker) hybrid(doc *Document) []*Chunk {
	var chunks []*Chunk
	for _, sec := range parseSections(doc.Content) {
		words := scanWords(doc.Content[sec.start:sec.end])
		if len(words) == 0 {
			continue
		}
		if len(words) <= c.opts.ChunkSize {
			if ch := c.sectionChunk(doc, sec); ch != nil {
				chunks = append(chunks, ch)
			}
			continue
		}
		for _, w := range c.windows(len(words)) {
			start := sec.start + words[w.start].start
			end := sec.start + words[w.end-1].end
			ch := c.newChunk(doc, typeForDepth(sec.depth), sec.title, start, end)
			chunks = append(chunks, ch)
		}
	}
	return chunks
}

// hierarchical emits three granularities for the same document: one
// overview, the structural sections, and the paragraphs.
func (c *Chunker) hierarchical(doc *Document, words []span) []*Chunk {
	var chunks []*Chunk

	n := len(words)
	if n > c.opts.ChunkSize {
		n = c.opts.ChunkSize
	}
	chunks = append(chunks, c.newChunk(doc, TypeOverview, doc.Title, words[0].start, words[n-1].end))

	for _, sec := range parseSections(doc.Content) {
		if sec.depth == 0 {
			continue
		}
		if ch := c.sectionChunk(doc, sec); ch != nil {
			chunks = append(chunks, ch)
		}
	}

	for _, p := range splitParagraphs(doc.Content) {
		pw := scanWords(doc.Content[p.start:p.end])
		if len(pw) == 0 {
			continue
		}
		start := p.start + pw[0].start
		end := p.start + pw[len(pw)-1].end
		chunks = append(chunks, c.newChunk(doc, TypeParagraph, "", start, end))
	}

	return chunks
}

// fixed slides a window of ChunkSize tokens over the whole document.
func (c *Chunker) fixed(doc *Document, words []span, typ Type, title string) []*Chunk {
	var chunks []*Chunk
	for _, w := range c.windows(len(words)) {
		ch := c.newChunk(doc, typ, title, words[w.start].start, words[w.end-1].end)
		chunks = append(chunks, ch)
	}
	return chunks
}

// windows returns sliding token windows over n tokens: each window holds
// up to ChunkSize tokens and the start advances by ChunkSize - OverlapSize.
func (c *Chunker) windows(n int) []span {
	step := c.opts.ChunkSize - c.opts.OverlapSize
	if step <= 0 {
		step = c.opts.ChunkSize
	}
	var out []span
	for i := 0; i < n; i += step {
		end := i + c.opts.ChunkSize
		if end > n {
			end = n
		}
		out = append(out, span{start: i, end: end})
		if end == n {
			break
		}
	}
	return out
}

// sectionChunk builds one chunk for a section, or nil when the section
// has no tokens at all. A heading-only section still becomes a chunk so
// no document text is silently dropped.
func (c *Chunker) sectionChunk(doc *Document, sec section) *Chunk {
	words := scanWords(doc.Content[sec.start:sec.end])
	if len(words) == 0 {
		return nil
	}
	start := sec.start + words[0].start
	end := sec.start + words[len(words)-1].end
	return c.newChunk(doc, typeForDepth(sec.depth), sec.title, start, end)
}

func (c *Chunker) newChunk(doc *Document, typ Type, title string, start, end int) *Chunk {
	content := doc.Content[start:end]
	return &Chunk{
		ID:           generateChunkID(doc.ID, typ, start, content),
		DocID:        doc.ID,
		Type:         typ,
		Level:        levelForType(typ),
		Start:        start,
		End:          end,
		Content:      content,
		SectionTitle: title,
	}
}

// finalize assigns document-order indexes and links neighbors of the
// same level for context expansion.
func (c *Chunker) finalize(doc *Document, chunks []*Chunk) []*Chunk {
	lastByLevel := make(map[int]*Chunk)
	for i, ch := range chunks {
		ch.Index = i
		if prev, ok := lastByLevel[ch.Level]; ok {
			ch.PrevID = prev.ID
			prev.NextID = ch.ID
		}
		lastByLevel[ch.Level] = ch
	}
	return chunks
}

// typeForDepth maps a heading depth to a chunk type. Depth 0 is the
// preamble before any heading.
func typeForDepth(depth int) Type {
	switch {
	case depth == 0:
		return TypeOverview
	case depth == 1:
		return TypeSection
	case depth == 2:
		return TypeSubSection
	default:
		return TypeParagraph
	}
}

// span is a half-open [start, end) byte range.
type span struct {
	start int
	end   int
}

// scanWords returns the byte ranges of whitespace-separated words, so
// chunk boundaries always land on token boundaries.
func scanWords(s string) []span {
	var spans []span
	inWord := false
	start := 0
	for i, r := range s {
		if unicode.IsSpace(r) {
			if inWord {
				spans = append(spans, span{start: start, end: i})
				inWord = false
			}
		} else if !inWord {
			start = i
			inWord = true
		}
	}
	if inWord {
		spans = append(spans, span{start: start, end: len(s)})
	}
	return spans
}

// section is a structural region of a document delimited by headings.
// Depth 0 is the preamble before the first heading.
type section struct {
	depth int
	title string
	start int // byte offset of the section start (heading line)
	end   int // exclusive
}

// parseSections splits content into heading-delimited sections,
// preserving document order.
func parseSections(content string) []section {
	var sections []section
	var current *section

	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		trimmed := strings.TrimRight(line, "\n")
		if m := headerPattern.FindStringSubmatch(trimmed); m != nil {
			if current != nil {
				current.end = offset
				sections = append(sections, *current)
			}
			current = &section{
				depth: len(m[1]),
				title: strings.TrimSpace(m[2]),
				start: offset,
			}
		} else if current == nil {
			current = &section{depth: 0, start: offset}
		}
		offset += len(line)
	}
	if current != nil {
		current.end = len(content)
		sections = append(sections, *current)
	}
	return sections
}

// splitParagraphs returns the byte ranges of blank-line separated
// paragraphs in document order.
func splitParagraphs(content string) []span {
	var out []span
	start := -1
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		blank := strings.TrimSpace(line) == ""
		if blank {
			if start >= 0 {
				out = append(out, span{start: start, end: offset})
				start = -1
			}
		} else if start < 0 {
			start = offset
		}
		offset += len(line)
	}
	if start >= 0 {
		out = append(out, span{start: start, end: len(content)})
	}
	return out
}
