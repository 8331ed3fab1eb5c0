// Package search implements the three-stage retrieval cascade:
// lexical candidate generation, dense semantic rescoring, and
// cross-encoder reranking, followed by score fusion and aggregation.
package search

import (
	"time"

	"github.com/cascade-search/cascade/internal/chunk"
	"github.com/cascade-search/cascade/internal/config"
	cascerr "github.com/cascade-search/cascade/internal/errors"
)

// Candidate is one (chunk, score) pair in a stage's output.
type Candidate struct {
	ChunkID string
	Score   float64
}

// cloneCandidates copies a candidate set. Sets are passed by value
// between stages; no stage mutates its input.
func cloneCandidates(in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	copy(out, in)
	return out
}

// Mode selects the granularity of search results.
type Mode string

const (
	// ModeDocument aggregates chunk scores into document results.
	ModeDocument Mode = "document"
	// ModeChunk returns individual chunk results.
	ModeChunk Mode = "chunk"
	// ModeContext returns chunk results expanded with neighboring
	// chunks from the same document.
	ModeContext Mode = "context"
)

// State is the orchestrator's position in a query run.
type State string

const (
	StateIdle   State = "idle"
	StateStage1 State = "stage1"
	StateStage2 State = "stage2"
	StateStage3 State = "stage3"
	StateFused  State = "fused"
	StateDone   State = "done"
	StateFailed State = "failed"
)

// Options is the per-query configuration.
type Options struct {
	Mode Mode

	Stage1TopK int
	Stage2TopK int
	Stage3TopK int

	// UseLexical/UseDense/UseRerank toggle stages independently, with
	// the constraint that a later stage cannot run if an earlier one is
	// disabled.
	UseLexical bool
	UseDense   bool
	UseRerank  bool

	Weights config.StageWeights

	Aggregation   string
	ContextWindow int
	MinScore      float64
	ChunkBoost    bool
	Explain       bool

	Stage2Timeout time.Duration
	Stage3Timeout time.Duration
}

// DefaultOptions derives per-query options from the validated config.
func DefaultOptions(cfg *config.Config) Options {
	return Options{
		Mode:          ModeDocument,
		Stage1TopK:    cfg.Retrieval.Stage1TopK,
		Stage2TopK:    cfg.Retrieval.Stage2TopK,
		Stage3TopK:    cfg.Retrieval.Stage3TopK,
		UseLexical:    true,
		UseDense:      cfg.Embeddings.Provider != "none",
		UseRerank:     cfg.Rerank.Enabled,
		Weights:       cfg.Retrieval.Weights,
		Aggregation:   cfg.Retrieval.Aggregation,
		ContextWindow: cfg.Retrieval.ContextWindow,
		MinScore:      cfg.Retrieval.MinScoreThreshold,
		ChunkBoost:    cfg.Retrieval.ChunkBoost,
		Stage2Timeout: cfg.StageTimeout(cfg.Retrieval.Stage2Timeout),
		Stage3Timeout: cfg.StageTimeout(cfg.Retrieval.Stage3Timeout),
	}
}

// Validate checks per-query options. Runs once before any stage.
func (o *Options) Validate() error {
	switch o.Mode {
	case ModeDocument, ModeChunk, ModeContext:
	default:
		return cascerr.ConfigError("unknown search mode "+string(o.Mode), nil)
	}
	if o.Stage1TopK <= 0 || o.Stage2TopK <= 0 || o.Stage3TopK <= 0 {
		return cascerr.ConfigError("stage top-k values must be positive", nil)
	}
	if o.Stage2TopK > o.Stage1TopK || o.Stage3TopK > o.Stage2TopK {
		return cascerr.ConfigError("stage top-k values must be non-increasing", nil)
	}
	if !o.UseLexical {
		// Disabling Stage 1 disables the whole pipeline.
		return cascerr.ConfigError("lexical stage cannot be disabled", nil)
	}
	if o.UseRerank && !o.UseDense {
		return cascerr.ConfigError("rerank stage requires the dense stage", nil)
	}
	if o.Weights.Lexical < 0 || o.Weights.Dense < 0 || o.Weights.Rerank < 0 {
		return cascerr.ConfigError("stage weights must be non-negative", nil)
	}
	switch o.Aggregation {
	case config.AggregationMax, config.AggregationMean, config.AggregationWeightedSum:
	default:
		return cascerr.ConfigError("unknown aggregation "+o.Aggregation, nil)
	}
	if o.ContextWindow < 0 {
		return cascerr.ConfigError("context_window must not be negative", nil)
	}
	return nil
}

// Breakdown carries per-stage scores for one result chunk.
type Breakdown struct {
	Lexical float64 `json:"lexical"`
	Dense   float64 `json:"dense"`
	Rerank  float64 `json:"rerank"`
	Fused   float64 `json:"fused"`
}

// StageTrace records one stage transition for explain output.
type StageTrace struct {
	Stage      State         `json:"stage"`
	Elapsed    time.Duration `json:"elapsed"`
	Candidates int           `json:"candidates"`
	PassedThru bool          `json:"passed_through,omitempty"`
}

// Result is one search hit at document or chunk granularity. Results
// are never mutated after creation.
type Result struct {
	DocID    string  `json:"doc_id"`
	DocTitle string  `json:"doc_title,omitempty"`
	ChunkID  string  `json:"chunk_id"`
	Score    float64 `json:"score"`

	// Preview is a short excerpt from the representative chunk.
	Preview string `json:"preview,omitempty"`

	// Chunks are the supporting chunks (document mode, up to 3) or the
	// context-expanded chunks (context mode).
	Chunks []*chunk.Chunk `json:"chunks,omitempty"`

	// Breakdown is attached when the query ran with explain.
	Breakdown *Breakdown `json:"breakdown,omitempty"`
}

// Response is the outcome of one pipeline run.
type Response struct {
	Results []Result     `json:"results"`
	State   State        `json:"state"`
	Stages  []StageTrace `json:"stages,omitempty"`
}
