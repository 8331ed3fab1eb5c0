// Package config defines the typed configuration for the cascade pipeline.
//
// Configuration is loaded once, validated once, and treated as immutable
// afterwards. Every knob has a documented default so a zero config file
// produces a working pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	cascerr "github.com/cascade-search/cascade/internal/errors"
)

// Strategy names accepted by chunking.strategy.
const (
	StrategySemantic     = "semantic"
	StrategyHierarchical = "hierarchical"
	StrategyHybrid       = "hybrid"
	StrategyFixed        = "fixed"
)

// Aggregation names accepted by retrieval.aggregation.
const (
	AggregationMax         = "max"
	AggregationMean        = "mean"
	AggregationWeightedSum = "weighted_sum"
)

// Config represents the complete cascade configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Tokenizer  TokenizerConfig  `yaml:"tokenizer" json:"tokenizer"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Rerank     RerankConfig     `yaml:"rerank" json:"rerank"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// ChunkingConfig configures document chunking.
type ChunkingConfig struct {
	// Strategy selects the chunking strategy: semantic, hierarchical,
	// hybrid, or fixed.
	Strategy string `yaml:"strategy" json:"strategy"`

	// ChunkSize is the target chunk size in tokens.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`

	// OverlapSize is the sliding-window overlap in tokens. Must be
	// strictly smaller than ChunkSize.
	OverlapSize int `yaml:"overlap_size" json:"overlap_size"`
}

// TokenizerConfig configures tokenization and normalization.
type TokenizerConfig struct {
	// CompoundTerms lists multi-word terms emitted as single tokens in
	// addition to their constituents (e.g. "bà triệu").
	CompoundTerms []string `yaml:"compound_terms" json:"compound_terms"`

	// CompoundFile optionally points to a file with one compound term
	// per line, merged with CompoundTerms.
	CompoundFile string `yaml:"compound_file" json:"compound_file"`
}

// StageWeights are the fusion weights per stage. Normalized to sum to 1
// during validation when their sum is positive.
type StageWeights struct {
	Lexical float64 `yaml:"lexical" json:"lexical"`
	Dense   float64 `yaml:"dense" json:"dense"`
	Rerank  float64 `yaml:"rerank" json:"rerank"`
}

// RetrievalConfig configures the three-stage retrieval cascade.
type RetrievalConfig struct {
	// Stage1TopK bounds the lexical candidate set.
	Stage1TopK int `yaml:"stage1_top_k" json:"stage1_top_k"`

	// Stage2TopK bounds the dense candidate set.
	Stage2TopK int `yaml:"stage2_top_k" json:"stage2_top_k"`

	// Stage3TopK bounds the reranked candidate set.
	Stage3TopK int `yaml:"stage3_top_k" json:"stage3_top_k"`

	// Weights are the per-stage fusion weights.
	Weights StageWeights `yaml:"weights" json:"weights"`

	// Aggregation selects chunk-to-document aggregation: max, mean, or
	// weighted_sum.
	Aggregation string `yaml:"aggregation" json:"aggregation"`

	// ContextWindow is the number of neighboring chunks included on each
	// side in context mode.
	ContextWindow int `yaml:"context_window" json:"context_window"`

	// MinScoreThreshold drops fused results scoring below it. Zero keeps
	// everything.
	MinScoreThreshold float64 `yaml:"min_score_threshold" json:"min_score_threshold"`

	// ChunkBoost enables chunk-type boosting after fusion.
	ChunkBoost bool `yaml:"chunk_boost" json:"chunk_boost"`

	// Stage2Timeout bounds the dense stage per query (e.g. "5s").
	Stage2Timeout string `yaml:"stage2_timeout" json:"stage2_timeout"`

	// Stage3Timeout bounds the rerank stage per query (e.g. "10s").
	Stage3Timeout string `yaml:"stage3_timeout" json:"stage3_timeout"`
}

// EmbeddingsConfig configures the embedding provider for the dense stage.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "ollama", "openai", or "none".
	// "none" disables the dense stage (identity pass-through).
	Provider string `yaml:"provider" json:"provider"`

	// Model is the embedding model name.
	Model string `yaml:"model" json:"model"`

	// Endpoint overrides the provider's default endpoint.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// BatchSize is the number of texts embedded per request.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// CacheSize is the LRU embedding cache capacity. Zero disables caching.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// Precompute embeds all chunks at build time and stores the vectors
	// in the index, so queries only embed the query text.
	Precompute bool `yaml:"precompute" json:"precompute"`
}

// RerankConfig configures the cross-encoder rerank service.
type RerankConfig struct {
	// Enabled turns the rerank stage on. Off means identity pass-through.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Endpoint is the rerank service URL.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Model is the cross-encoder model name.
	Model string `yaml:"model" json:"model"`
}

// CacheConfig configures the index cache store.
type CacheConfig struct {
	// Backend selects the cache store: "sqlite" or "memory".
	Backend string `yaml:"backend" json:"backend"`

	// Dir is the directory holding the cache database and lock files.
	Dir string `yaml:"dir" json:"dir"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Chunking: ChunkingConfig{
			Strategy:    StrategyHybrid,
			ChunkSize:   256,
			OverlapSize: 32,
		},
		Retrieval: RetrievalConfig{
			Stage1TopK: 100,
			Stage2TopK: 50,
			Stage3TopK: 20,
			Weights: StageWeights{
				Lexical: 0.3,
				Dense:   0.4,
				Rerank:  0.3,
			},
			Aggregation:   AggregationMax,
			ContextWindow: 1,
			Stage2Timeout: "5s",
			Stage3Timeout: "10s",
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			BatchSize: 32,
			CacheSize: 1000,
		},
		Rerank: RerankConfig{
			Enabled:  false,
			Endpoint: "http://localhost:9659",
		},
		Cache: CacheConfig{
			Backend: "sqlite",
			Dir:     defaultCacheDir(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultCacheDir returns the default cache directory.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".cascade", "cache")
	}
	return filepath.Join(home, ".cascade", "cache")
}

// Load loads configuration from path, applying defaults for unset fields.
// An empty path tries cascade.yaml / cascade.yml in the working directory;
// neither existing is fine and yields the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"cascade.yaml", "cascade.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, cascerr.New(cascerr.ErrCodeConfigLoad,
				fmt.Sprintf("failed to read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, cascerr.New(cascerr.ErrCodeConfigLoad,
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes stage weights.
// It runs once at pipeline construction; stages never re-validate.
func (c *Config) Validate() error {
	switch c.Chunking.Strategy {
	case StrategySemantic, StrategyHierarchical, StrategyHybrid, StrategyFixed:
	default:
		return cascerr.ConfigError(
			fmt.Sprintf("unknown chunking strategy %q", c.Chunking.Strategy), nil)
	}

	if c.Chunking.ChunkSize <= 0 {
		return cascerr.ConfigError(
			fmt.Sprintf("chunk_size must be positive, got %d", c.Chunking.ChunkSize), nil)
	}
	if c.Chunking.OverlapSize < 0 || c.Chunking.OverlapSize >= c.Chunking.ChunkSize {
		return cascerr.ConfigError(
			fmt.Sprintf("overlap_size %d must be in [0, chunk_size)", c.Chunking.OverlapSize), nil)
	}

	for name, k := range map[string]int{
		"stage1_top_k": c.Retrieval.Stage1TopK,
		"stage2_top_k": c.Retrieval.Stage2TopK,
		"stage3_top_k": c.Retrieval.Stage3TopK,
	} {
		if k <= 0 {
			return cascerr.ConfigError(
				fmt.Sprintf("%s must be positive, got %d", name, k), nil)
		}
	}

	if c.Retrieval.Stage2TopK > c.Retrieval.Stage1TopK {
		return cascerr.ConfigError(
			fmt.Sprintf("stage2_top_k %d exceeds stage1_top_k %d",
				c.Retrieval.Stage2TopK, c.Retrieval.Stage1TopK), nil)
	}
	if c.Retrieval.Stage3TopK > c.Retrieval.Stage2TopK {
		return cascerr.ConfigError(
			fmt.Sprintf("stage3_top_k %d exceeds stage2_top_k %d",
				c.Retrieval.Stage3TopK, c.Retrieval.Stage2TopK), nil)
	}

	w := &c.Retrieval.Weights
	if w.Lexical < 0 || w.Dense < 0 || w.Rerank < 0 {
		return cascerr.ConfigError("stage weights must be non-negative", nil)
	}
	if sum := w.Lexical + w.Dense + w.Rerank; sum > 0 {
		w.Lexical /= sum
		w.Dense /= sum
		w.Rerank /= sum
	} else {
		return cascerr.ConfigError("stage weights must not all be zero", nil)
	}

	switch c.Retrieval.Aggregation {
	case AggregationMax, AggregationMean, AggregationWeightedSum:
	default:
		return cascerr.ConfigError(
			fmt.Sprintf("unknown aggregation %q", c.Retrieval.Aggregation), nil)
	}

	if c.Retrieval.ContextWindow < 0 {
		return cascerr.ConfigError("context_window must not be negative", nil)
	}
	if c.Retrieval.MinScoreThreshold < 0 {
		return cascerr.ConfigError("min_score_threshold must not be negative", nil)
	}

	for name, s := range map[string]string{
		"stage2_timeout": c.Retrieval.Stage2Timeout,
		"stage3_timeout": c.Retrieval.Stage3Timeout,
	} {
		if s == "" {
			continue
		}
		if _, err := time.ParseDuration(s); err != nil {
			return cascerr.ConfigError(
				fmt.Sprintf("invalid %s %q", name, s), err)
		}
	}

	switch c.Embeddings.Provider {
	case "ollama", "openai", "none":
	default:
		return cascerr.ConfigError(
			fmt.Sprintf("unknown embeddings provider %q", c.Embeddings.Provider), nil)
	}
	if c.Embeddings.BatchSize <= 0 {
		return cascerr.ConfigError("embeddings batch_size must be positive", nil)
	}

	switch c.Cache.Backend {
	case "sqlite", "memory":
	default:
		return cascerr.ConfigError(
			fmt.Sprintf("unknown cache backend %q", c.Cache.Backend), nil)
	}

	return nil
}

// StageTimeout parses the named stage timeout. Zero means no timeout.
func (c *Config) StageTimeout(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
