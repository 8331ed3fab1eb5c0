package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cascade-search/cascade/internal/chunk"
	"github.com/cascade-search/cascade/internal/config"
	"github.com/cascade-search/cascade/internal/embed"
	"github.com/cascade-search/cascade/internal/loader"
	"github.com/cascade-search/cascade/internal/rerank"
	"github.com/cascade-search/cascade/internal/store"
	"github.com/cascade-search/cascade/internal/token"
)

// loadConfig loads the configuration and applies an optional preset.
func loadConfig(preset string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if preset != "" {
		if err := cfg.Preset(preset); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openCache opens the configured index cache store.
func openCache(cfg *config.Config) (store.CacheStore, error) {
	if cfg.Cache.Backend == "memory" {
		return store.NewMemoryCache(), nil
	}
	return store.NewSQLiteCache(filepath.Join(cfg.Cache.Dir, "index.db"))
}

// compoundTerms merges inline compound terms with the compound file.
func compoundTerms(cfg *config.Config) ([]string, error) {
	fileTerms, err := token.ReadCompoundTerms(cfg.Tokenizer.CompoundFile)
	if err != nil {
		return nil, err
	}
	return append(fileTerms, cfg.Tokenizer.CompoundTerms...), nil
}

// newEmbedder constructs the configured embedder, wrapped in an LRU
// cache when caching is enabled. Provider "none" yields the null
// embedder and a pass-through dense stage.
func newEmbedder(cfg *config.Config) embed.Embedder {
	var e embed.Embedder
	switch cfg.Embeddings.Provider {
	case "none":
		return embed.NewNullEmbedder()
	case "openai":
		e = embed.NewOpenAIEmbedder(embed.OpenAIConfig{
			BaseURL:   cfg.Embeddings.Endpoint,
			Model:     cfg.Embeddings.Model,
			BatchSize: cfg.Embeddings.BatchSize,
		})
	default:
		e = embed.NewOllamaEmbedder(embed.OllamaConfig{
			Host:      cfg.Embeddings.Endpoint,
			Model:     cfg.Embeddings.Model,
			BatchSize: cfg.Embeddings.BatchSize,
		})
	}
	if cfg.Embeddings.CacheSize > 0 {
		return embed.NewCachedEmbedder(e, cfg.Embeddings.CacheSize)
	}
	return e
}

// newReranker constructs the configured reranker. Disabled rerank
// yields the no-op variant and a pass-through stage.
func newReranker(cfg *config.Config) rerank.Reranker {
	if !cfg.Rerank.Enabled {
		return rerank.NewNoopReranker()
	}
	return rerank.NewHTTPReranker(rerank.Config{
		Endpoint: cfg.Rerank.Endpoint,
		Model:    cfg.Rerank.Model,
	})
}

// buildIndex loads the corpus and builds (or loads from cache) its
// index. The returned cleanup closes the cache store.
func buildIndex(ctx context.Context, cfg *config.Config, corpusPath string, progress bool) (*store.Index, func(), error) {
	docs, err := loader.LoadCorpus(corpusPath)
	if err != nil {
		return nil, nil, err
	}

	cache, err := openCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = cache.Close() }

	terms, err := compoundTerms(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	opts := store.BuildOptions{
		Chunking: chunk.Options{
			Strategy:    chunk.Strategy(cfg.Chunking.Strategy),
			ChunkSize:   cfg.Chunking.ChunkSize,
			OverlapSize: cfg.Chunking.OverlapSize,
		},
		CompoundTerms:   terms,
		EnableCaching:   true,
		Progress:        progress,
		VectorBatchSize: cfg.Embeddings.BatchSize,
	}
	if cfg.Embeddings.Precompute && cfg.Embeddings.Provider != "none" {
		embedder := newEmbedder(cfg)
		defer func() { _ = embedder.Close() }()
		if embedder.Available(ctx) {
			opts.Vectorizer = embedder
			opts.VectorModel = embedder.ModelName()
		} else {
			slog.Warn("embedder unavailable, skipping vector precompute",
				slog.String("provider", cfg.Embeddings.Provider))
		}
	}

	buildStart := time.Now()
	s := store.New(cache, filepath.Join(cfg.Cache.Dir, "locks"), slog.Default())
	ix, err := s.Build(ctx, docs, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	slog.Debug("index ready",
		slog.Int("chunks", ix.NumChunks()),
		slog.Duration("elapsed", time.Since(buildStart)))
	return ix, cleanup, nil
}
