package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cascade-search/cascade/internal/chunk"
	cascerr "github.com/cascade-search/cascade/internal/errors"
	"github.com/cascade-search/cascade/internal/token"
)

// Vectorizer embeds chunk texts at build time. Batches preserve input
// order 1:1.
type Vectorizer interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// BuildOptions configures one index build.
type BuildOptions struct {
	// Chunking selects the chunking strategy and sizes. Part of the
	// cache key: changing it invalidates the cache.
	Chunking chunk.Options

	// CompoundTerms is the compound dictionary used for tokenization.
	// Part of the cache key.
	CompoundTerms []string

	// EnableCaching reuses a cached index when the content hash matches.
	EnableCaching bool

	// Progress renders a progress bar during the build.
	Progress bool

	// Vectorizer, when set, precomputes chunk embeddings into the index.
	Vectorizer Vectorizer

	// VectorModel names the embedding model. Part of the cache key when
	// Vectorizer is set.
	VectorModel string

	// VectorBatchSize is the embedding batch size (default 32).
	VectorBatchSize int
}

// Store builds indexes and persists them in a cache store.
type Store struct {
	cache   CacheStore
	lockDir string
	logger  *slog.Logger
}

// New creates a Store. lockDir holds the per-key advisory lock files
// guarding cache writes.
func New(cache CacheStore, lockDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{cache: cache, lockDir: lockDir, logger: logger}
}

// CacheKey computes the content hash for a (corpus, configuration)
// pair: a SHA256 over a canonical serialization of the documents, the
// chunking options, the compound dictionary, and the embedding model.
// Any change to any of them yields a different key.
func CacheKey(docs []*chunk.Document, opts BuildOptions) string {
	terms := append([]string(nil), opts.CompoundTerms...)
	sort.Strings(terms)

	canonical := struct {
		Strategy    chunk.Strategy    `json:"strategy"`
		ChunkSize   int               `json:"chunk_size"`
		OverlapSize int               `json:"overlap_size"`
		Compounds   []string          `json:"compounds"`
		VectorModel string            `json:"vector_model,omitempty"`
		Documents   []*chunk.Document `json:"documents"`
	}{
		Strategy:    opts.Chunking.Strategy,
		ChunkSize:   opts.Chunking.ChunkSize,
		OverlapSize: opts.Chunking.OverlapSize,
		Compounds:   terms,
		Documents:   docs,
	}
	if opts.Vectorizer != nil {
		canonical.VectorModel = opts.VectorModel
	}

	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LoadCached returns the cached index for key, or a miss. A corrupt
// entry is reported as IndexUnavailable; Build treats that as a miss
// and rebuilds.
func (s *Store) LoadCached(key string) (*Index, bool, error) {
	data, hit, err := s.cache.Get(key)
	if err != nil {
		return nil, false, cascerr.IndexUnavailable("cache read failed", err)
	}
	if !hit {
		return nil, false, nil
	}
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, false, cascerr.New(cascerr.ErrCodeCacheCorrupt,
			"cached index is unreadable", err)
	}
	if ix.Key != key {
		return nil, false, cascerr.New(cascerr.ErrCodeCacheCorrupt,
			"cached index key mismatch", nil)
	}
	return &ix, true, nil
}

// Build constructs the index for the corpus, reusing the cache when the
// content hash matches. Building twice with identical inputs yields an
// identical index: same chunk ids, same ordering.
func (s *Store) Build(ctx context.Context, docs []*chunk.Document, opts BuildOptions) (*Index, error) {
	key := CacheKey(docs, opts)

	if opts.EnableCaching {
		ix, hit, err := s.LoadCached(key)
		if err != nil {
			// Corrupt or unreadable cache entries trigger a rebuild.
			s.logger.Warn("index_cache_unusable",
				slog.String("key", key),
				slog.String("error", err.Error()))
			_ = s.cache.Delete(key)
		} else if hit {
			s.logger.Info("index_cache_hit",
				slog.String("key", key),
				slog.Int("chunks", ix.NumChunks()))
			return ix, nil
		}
	}

	ix, err := s.build(ctx, docs, opts, key)
	if err != nil {
		return nil, err
	}

	if opts.EnableCaching {
		if err := s.persist(key, ix); err != nil {
			// A failed cache write degrades future builds, not this one.
			s.logger.Warn("index_cache_write_failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("index_built",
		slog.String("key", key),
		slog.Int("documents", ix.NumDocuments()),
		slog.Int("chunks", ix.NumChunks()),
		slog.Int("terms", len(ix.Postings)))
	return ix, nil
}

// docResult carries one document's chunks and token sequences out of
// the parallel tokenization phase.
type docResult struct {
	chunks []*chunk.Chunk
	tokens [][]string
}

func (s *Store) build(ctx context.Context, docs []*chunk.Document, opts BuildOptions, key string) (*Index, error) {
	chunker := chunk.NewChunker(opts.Chunking)
	tokenizer := token.NewTokenizer(token.NewCompoundDict(opts.CompoundTerms))

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(len(docs)), "indexing")
	}

	// Chunking and tokenization are independent per document; only the
	// postings merge below is serialized.
	results := make([]docResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks := chunker.Chunk(doc)
			tokens := make([][]string, len(chunks))
			for j, ch := range chunks {
				tokens[j] = tokenizer.Tokenize(ch.Content)
			}
			results[i] = docResult{chunks: chunks, tokens: tokens}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, cascerr.New(cascerr.ErrCodeIndexBuild, "index build failed", err)
	}

	ix := &Index{
		Key:       key,
		Chunks:    make(map[string]*chunk.Chunk),
		Postings:  make(map[string][]string),
		TF:        make(map[string]map[string]int),
		DF:        make(map[string]int),
		ChunkLen:  make(map[string]int),
		DocChunks: make(map[string][]string),
		DocTitles: make(map[string]string),
	}

	for i, doc := range docs {
		ix.DocOrder = append(ix.DocOrder, doc.ID)
		ix.DocTitles[doc.ID] = doc.Title
		docTerms := make(map[string]struct{})

		for j, ch := range results[i].chunks {
			if _, dup := ix.Chunks[ch.ID]; dup {
				return nil, cascerr.New(cascerr.ErrCodeIndexBuild,
					fmt.Sprintf("duplicate chunk id %s in document %s", ch.ID, doc.ID), nil)
			}
			ix.Chunks[ch.ID] = ch
			ix.Order = append(ix.Order, ch.ID)
			ix.DocChunks[doc.ID] = append(ix.DocChunks[doc.ID], ch.ID)
			ix.ChunkLen[ch.ID] = token.BaseCount(results[i].tokens[j])

			for _, term := range results[i].tokens[j] {
				counts, ok := ix.TF[term]
				if !ok {
					counts = make(map[string]int)
					ix.TF[term] = counts
				}
				if counts[ch.ID] == 0 {
					ix.Postings[term] = append(ix.Postings[term], ch.ID)
				}
				counts[ch.ID]++
				docTerms[term] = struct{}{}
			}
		}
		for term := range docTerms {
			ix.DF[term]++
		}
	}

	if opts.Vectorizer != nil {
		if err := s.vectorize(ctx, ix, opts); err != nil {
			// Missing vectors fall back to query-time embedding.
			s.logger.Warn("chunk_vector_precompute_failed",
				slog.String("error", err.Error()))
		}
	}

	return ix, nil
}

// vectorize precomputes chunk embeddings in order-preserving batches.
func (s *Store) vectorize(ctx context.Context, ix *Index, opts BuildOptions) error {
	batchSize := opts.VectorBatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	ix.Vectors = make(map[string][]float32, len(ix.Order))
	for start := 0; start < len(ix.Order); start += batchSize {
		end := start + batchSize
		if end > len(ix.Order) {
			end = len(ix.Order)
		}
		batch := ix.Order[start:end]
		texts := make([]string, len(batch))
		for i, id := range batch {
			texts[i] = ix.Chunks[id].Content
		}

		vectors, err := opts.Vectorizer.EmbedBatch(ctx, texts)
		if err != nil {
			ix.Vectors = nil
			return err
		}
		if len(vectors) != len(batch) {
			ix.Vectors = nil
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}
		for i, id := range batch {
			ix.Vectors[id] = vectors[i]
		}
	}
	return nil
}

// persist serializes the index and writes it to the cache store under a
// per-key advisory file lock, so concurrent builders of the same corpus
// never interleave writes.
func (s *Store) persist(key string, ix *Index) error {
	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("failed to serialize index: %w", err)
	}

	lock := NewFileLock(s.lockDir, key)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	return s.cache.Put(key, data)
}
