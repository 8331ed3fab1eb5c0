package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cascade-search/cascade/internal/output"
)

// newStatsCmd creates the stats command.
func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats <corpus.json>",
		Short: "Show index statistics for a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output statistics as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, corpusPath string, jsonOutput bool) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	ix, cleanup, err := buildIndex(cmd.Context(), cfg, corpusPath, false)
	if err != nil {
		return err
	}
	defer cleanup()

	stats := ix.Stats()
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	out := output.New(cmd.OutOrStdout())
	out.Status("📊", "index statistics")
	out.Field("documents", stats.Documents)
	out.Field("chunks", stats.Chunks)
	out.Field("terms", stats.Terms)
	out.Field("avg chunk length", fmt.Sprintf("%.1f", stats.AvgChunkLen))
	out.Field("vectors", stats.Vectors)
	for typ, n := range stats.ChunksByType {
		out.Field("chunks/"+string(typ), n)
	}
	return nil
}
