package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scielo-analytics/ocametrics/internal/cluster"
	"github.com/scielo-analytics/ocametrics/internal/config"
	"github.com/scielo-analytics/ocametrics/internal/scielo"
)

func newMergeCmd() *cobra.Command {
	var (
		input      string
		output     string
		auditLog   string
		strategies []string
		startYear  int
		endYear    int
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Deduplicate SciELO records into merged articles",
		Long: `Deduplicate SciELO article records into merged articles.

Records are indexed by DOI, PID and normalized title; the configured
matching strategies build an equivalence graph whose connected components
become merge clusters, each consolidated into one merged article.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if len(strategies) > 0 {
				cfg.Matching.Strategies = strategies
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			if endYear == 0 {
				endYear = time.Now().Year()
			}

			docs, err := scielo.NewLoader(input).Load(startYear, endYear)
			if err != nil {
				return err
			}

			res, err := cluster.NewBuilder(cfg.Matching).Build(docs)
			if err != nil {
				return err
			}

			if auditLog != "" {
				if err := cluster.WriteAudit(auditLog, res.Audit); err != nil {
					return err
				}
			}

			return scielo.SaveMerged(output, res.Merged)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to SciELO JSONL dump")
	cmd.Flags().StringVar(&output, "output", "", "Path for merged articles JSONL")
	cmd.Flags().StringVar(&auditLog, "audit-log", "", "Optional path for the merge audit log (JSONL)")
	cmd.Flags().StringSliceVar(&strategies, "strategies", nil, "Matching strategies to use (doi,pid,title); overrides config")
	cmd.Flags().IntVar(&startYear, "start-year", 2018, "First publication year to keep")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "Last publication year to keep (default: current year)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	// Accept a single comma-joined value too.
	cmd.Flags().Lookup("strategies").Usage = "Matching strategies, comma separated: " + strings.Join(config.Default().Matching.Strategies, ",")

	return cmd
}
