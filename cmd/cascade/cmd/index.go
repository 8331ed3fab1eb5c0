package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cascade-search/cascade/internal/output"
)

// newIndexCmd creates the index command.
func newIndexCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "index <corpus.json>",
		Short: "Build the retrieval index for a corpus",
		Long: `Build the chunk index for a JSON corpus file.

The index is content-addressed: rebuilding an unchanged corpus with an
unchanged configuration reuses the cached index. Any change to the
documents, the chunking settings, or the compound dictionary triggers
a rebuild.

Examples:
  cascade index corpus.json
  cascade index corpus.json --preset accurate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Apply a config preset: fast, balanced, accurate")

	return cmd
}

func runIndex(cmd *cobra.Command, corpusPath, preset string) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig(preset)
	if err != nil {
		return err
	}

	ix, cleanup, err := buildIndex(cmd.Context(), cfg, corpusPath, true)
	if err != nil {
		return err
	}
	defer cleanup()

	stats := ix.Stats()
	out.Successf("indexed %d documents into %d chunks (%d terms)",
		stats.Documents, stats.Chunks, stats.Terms)
	if stats.Vectors > 0 {
		out.Statusf("", "precomputed %d chunk vectors", stats.Vectors)
	}
	return nil
}
