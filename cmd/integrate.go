package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/scielo-analytics/ocametrics/internal/linker"
	"github.com/scielo-analytics/ocametrics/internal/openalex"
	"github.com/scielo-analytics/ocametrics/internal/record"
	"github.com/scielo-analytics/ocametrics/internal/scielo"
)

func newIntegrateCmd() *cobra.Command {
	var (
		mergedPath    string
		worksDir      string
		output        string
		unmatchedPath string
	)

	cmd := &cobra.Command{
		Use:   "integrate",
		Short: "Link merged SciELO articles with OpenAlex works",
		Long: `Link merged SciELO articles with extracted OpenAlex works by DOI.

Each merged article claims the OpenAlex works matching any of its DOIs;
multilingual variants are consolidated into one record per article.
Works never claimed by an article pass through unchanged, and articles
without any match become unmatched records with zero citations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			articles, err := scielo.LoadMerged(mergedPath)
			if err != nil {
				return err
			}

			works, err := openalex.ReadWorksDir(worksDir)
			if err != nil {
				return err
			}

			res, err := linker.New(works).Link(articles)
			if err != nil {
				return err
			}

			slog.Info("Linking done",
				"articles", len(articles),
				"matched", res.Matched,
				"unmatched", len(res.Unmatched),
				"passthrough", res.Passthrough)

			if unmatchedPath != "" {
				if err := record.Write(unmatchedPath, res.Unmatched); err != nil {
					return err
				}
			}

			// Unmatched articles ride along in the main output; the compute
			// stage filters them out by their synthetic work id.
			return record.Write(output, append(res.Integrated, res.Unmatched...))
		},
	}

	cmd.Flags().StringVar(&mergedPath, "merged", "", "Path to merged articles JSONL produced by the merge command")
	cmd.Flags().StringVar(&worksDir, "works-dir", "", "Directory with extracted OpenAlex Parquet part files")
	cmd.Flags().StringVar(&output, "output", "", "Path for the integrated Parquet file")
	cmd.Flags().StringVar(&unmatchedPath, "unmatched", "", "Optional path for a Parquet file with unmatched articles only")

	_ = cmd.MarkFlagRequired("merged")
	_ = cmd.MarkFlagRequired("works-dir")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
