package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocametrics",
		Short: "Category-normalized bibliometric indicators for SciELO journals",
		Long: `ocametrics computes category-normalized bibliometric indicators for
journals by linking SciELO articles with OpenAlex works.

The pipeline runs in stages: extract OpenAlex snapshot metrics, merge
duplicate SciELO records, integrate both sources into consolidated
records, and compute per-journal indicators.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file with matching and indicator tunables")

	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newMergeCmd())
	cmd.AddCommand(newIntegrateCmd())
	cmd.AddCommand(newComputeCmd())

	return cmd
}
