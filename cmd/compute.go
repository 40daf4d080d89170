package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scielo-analytics/ocametrics/internal/adapter"
	"github.com/scielo-analytics/ocametrics/internal/config"
	"github.com/scielo-analytics/ocametrics/internal/engine"
	"github.com/scielo-analytics/ocametrics/internal/metadata"
	"github.com/scielo-analytics/ocametrics/internal/report"
)

func newComputeCmd() *cobra.Command {
	var (
		input        string
		output       string
		metadataPath string
		level        string
		categoryID   string
		year         int
		startYear    int
		endYear      int
		windows      []int
		shortenIDs   bool
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute category-normalized journal indicators",
		Long: `Compute category-normalized bibliometric indicators per journal.

For every category of the chosen taxonomy level and every year in range,
the category partition is aggregated, percentile thresholds are derived
from its citation distribution and each journal is scored against them.
Results are written as one CSV row per journal and category.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if len(windows) > 0 {
				cfg.Indicators.Windows = windows
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			var years []int
			switch {
			case year != 0:
				years = []int{year}
			case startYear != 0 && endYear != 0:
				if endYear < startYear {
					return fmt.Errorf("end-year %d is before start-year %d", endYear, startYear)
				}
				for y := startYear; y <= endYear; y++ {
					years = append(years, y)
				}
			default:
				return fmt.Errorf("either --year or both --start-year and --end-year are required")
			}

			source, err := adapter.NewParquetSource(input)
			if err != nil {
				return err
			}

			var meta *metadata.Table
			if metadataPath != "" {
				meta, err = metadata.Load(metadataPath)
				if err != nil {
					return err
				}
			}

			w, err := report.NewWriter(output, cfg.Indicators.Windows, cfg.Indicators.Percentiles, shortenIDs)
			if err != nil {
				return err
			}

			eng := engine.New(source, meta, cfg.Indicators)
			if err := eng.Run(years, level, categoryID, w); err != nil {
				w.Close()
				return err
			}

			return w.Close()
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to the integrated Parquet file")
	cmd.Flags().StringVar(&output, "output", "", "Path for the indicators CSV")
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "Optional journal metadata CSV for descriptive columns")
	cmd.Flags().StringVar(&level, "level", "field", "Taxonomy level: domain, field, subfield or topic")
	cmd.Flags().StringVar(&categoryID, "category-id", "", "Restrict to a single category id")
	cmd.Flags().IntVar(&year, "year", 0, "Single publication year to compute")
	cmd.Flags().IntVar(&startYear, "start-year", 0, "First publication year of the range")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "Last publication year of the range")
	cmd.Flags().IntSliceVar(&windows, "windows", nil, "Citation windows in years; overrides config")
	cmd.Flags().BoolVar(&shortenIDs, "shorten-ids", false, "Strip the OpenAlex URL prefix from ids in the output")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
