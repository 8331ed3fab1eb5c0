package cmd

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cascade-search/cascade/internal/output"
	"github.com/cascade-search/cascade/internal/search"
	"github.com/cascade-search/cascade/internal/token"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	corpus   string
	mode     string
	format   string
	preset   string
	noDense  bool
	noRerank bool
	explain  bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search an indexed corpus",
		Long: `Search a corpus through the retrieval cascade.

Stage 1 always runs; the dense and rerank stages run when their
services are configured and reachable, and silently pass candidates
through otherwise.

Examples:
  cascade search "bà triệu" --corpus corpus.json
  cascade search "khởi nghĩa" --corpus corpus.json --mode chunk
  cascade search "quân ngô" --corpus corpus.json --explain --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringVar(&opts.corpus, "corpus", "", "Corpus JSON file (required)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "document", "Result granularity: document, chunk, context")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "Apply a config preset: fast, balanced, accurate")
	cmd.Flags().BoolVar(&opts.noDense, "no-dense", false, "Skip the dense rescoring stage")
	cmd.Flags().BoolVar(&opts.noRerank, "no-rerank", false, "Skip the rerank stage")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Show per-stage scores and timings")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig(opts.preset)
	if err != nil {
		return err
	}

	ix, cleanup, err := buildIndex(cmd.Context(), cfg, opts.corpus, false)
	if err != nil {
		return err
	}
	defer cleanup()

	terms, err := compoundTerms(cfg)
	if err != nil {
		return err
	}

	embedder := newEmbedder(cfg)
	defer func() { _ = embedder.Close() }()
	reranker := newReranker(cfg)
	defer func() { _ = reranker.Close() }()

	engine := search.NewEngine(ix, token.NewTokenizer(token.NewCompoundDict(terms)),
		embedder, reranker, nil)

	queryOpts := search.DefaultOptions(cfg)
	queryOpts.Mode = search.Mode(opts.mode)
	queryOpts.Explain = opts.explain
	if opts.noDense {
		queryOpts.UseDense = false
		queryOpts.UseRerank = false
	}
	if opts.noRerank {
		queryOpts.UseRerank = false
	}

	resp, err := engine.Search(cmd.Context(), query, queryOpts)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printResults(cmd, resp, opts.explain)
	return nil
}

func printResults(cmd *cobra.Command, resp *search.Response, explain bool) {
	out := output.New(cmd.OutOrStdout())

	if len(resp.Results) == 0 {
		out.Status("", "no results")
		return
	}

	for i, r := range resp.Results {
		title := r.DocTitle
		if title == "" {
			title = r.DocID
		}
		out.Statusf("", "%2d. %-30s %.4f", i+1, title, r.Score)
		if r.Preview != "" {
			out.Statusf("", "    %s", r.Preview)
		}
		if explain && r.Breakdown != nil {
			out.Statusf("", "    lexical=%.4f dense=%.4f rerank=%.4f",
				r.Breakdown.Lexical, r.Breakdown.Dense, r.Breakdown.Rerank)
		}
	}

	if explain {
		out.Newline()
		for _, st := range resp.Stages {
			note := ""
			if st.PassedThru {
				note = " (passed through)"
			}
			out.Statusf("", "%s: %d candidates in %s%s",
				st.Stage, st.Candidates, st.Elapsed.Round(10*time.Microsecond), note)
		}
	}
}
