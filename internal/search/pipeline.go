package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/cascade-search/cascade/internal/embed"
	cascerr "github.com/cascade-search/cascade/internal/errors"
	"github.com/cascade-search/cascade/internal/rerank"
	"github.com/cascade-search/cascade/internal/store"
	"github.com/cascade-search/cascade/internal/token"
)

// Engine runs the retrieval cascade over one immutable index. It is
// safe for concurrent queries.
type Engine struct {
	ix        *store.Index
	tokenizer *token.Tokenizer
	embedder  embed.Embedder
	reranker  rerank.Reranker
	logger    *slog.Logger

	// orderPos maps chunk id to build order, the tie-break for every
	// score sort.
	orderPos map[string]int
}

// NewEngine creates a search engine over the index. A nil embedder or
// reranker leaves the corresponding stage as a pass-through.
func NewEngine(ix *store.Index, tokenizer *token.Tokenizer, embedder embed.Embedder, reranker rerank.Reranker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	orderPos := make(map[string]int, len(ix.Order))
	for i, id := range ix.Order {
		orderPos[id] = i
	}
	return &Engine{
		ix:        ix,
		tokenizer: tokenizer,
		embedder:  embedder,
		reranker:  reranker,
		logger:    logger,
		orderPos:  orderPos,
	}
}

// Search runs the cascade for one query.
//
// Stage 1 always runs; Stage 2 and Stage 3 run only when enabled and
// only over the previous stage's candidates. A stage whose backing
// service is unavailable or failing forwards its input unchanged.
// The only query failures are invalid options, a query that produces
// no tokens, and a corrupt index detected during Stage 1; an empty
// candidate set is an empty result, not an error.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	if err := opts.Validate(); err != nil {
		return &Response{State: StateFailed}, err
	}

	tokens := e.tokenizer.Tokenize(query)
	if len(tokens) == 0 {
		return &Response{State: StateFailed}, cascerr.EmptyQueryError(query)
	}

	resp := &Response{State: StateStage1}
	start := time.Now()
	stage1, err := e.stage1Lexical(tokens, opts.Stage1TopK)
	if err != nil {
		return &Response{State: StateFailed}, err
	}
	resp.Stages = append(resp.Stages, StageTrace{
		Stage:      StateStage1,
		Elapsed:    time.Since(start),
		Candidates: len(stage1),
	})

	final := stage1
	var stage2, stage3 []Candidate
	var ran2, ran3 bool

	if opts.UseDense {
		resp.State = StateStage2
		stageStart := time.Now()
		stage2, ran2 = e.stage2Dense(ctx, query, final, opts)
		resp.Stages = append(resp.Stages, StageTrace{
			Stage:      StateStage2,
			Elapsed:    time.Since(stageStart),
			Candidates: len(stage2),
			PassedThru: !ran2,
		})
		final = stage2
	}

	if opts.UseRerank {
		resp.State = StateStage3
		stageStart := time.Now()
		stage3, ran3 = e.stage3Rerank(ctx, query, final, opts)
		resp.Stages = append(resp.Stages, StageTrace{
			Stage:      StateStage3,
			Elapsed:    time.Since(stageStart),
			Candidates: len(stage3),
			PassedThru: !ran3,
		})
		final = stage3
	}

	resp.State = StateFused
	fused := e.fuse(final, stage1, stage2, stage3, ran2, ran3, opts.Weights)
	if opts.ChunkBoost {
		e.applyChunkBoost(fused, query)
	}
	e.sortFused(fused)
	fused = filterMinScore(fused, opts.MinScore)

	switch opts.Mode {
	case ModeChunk:
		resp.Results = e.chunkResults(fused, opts)
	case ModeContext:
		resp.Results = e.contextResults(fused, opts)
	default:
		resp.Results = e.aggregateDocuments(fused, opts)
	}
	resp.State = StateDone

	e.logger.Debug("query_complete",
		"tokens", len(tokens),
		"stage1", len(stage1),
		"dense_ran", ran2,
		"rerank_ran", ran3,
		"results", len(resp.Results),
		"elapsed", time.Since(start))
	return resp, nil
}
