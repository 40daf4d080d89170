package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/scielo-analytics/ocametrics/internal/openalex"
)

func newExtractCmd() *cobra.Command {
	var (
		baseDir   string
		outputDir string
		startYear int
		endYear   int
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract work metrics from OpenAlex snapshots",
		Long: `Extract citation metrics from compressed OpenAlex snapshot dumps.

Reads updated_date=* folders of gzip JSONL part files, keeps journal
articles inside the year range, computes citation windows and writes
Parquet part files per snapshot day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if endYear == 0 {
				endYear = time.Now().Year()
			}

			extractor := &openalex.Extractor{
				BaseDir:   baseDir,
				OutputDir: outputDir,
				StartYear: startYear,
				EndYear:   endYear,
				BatchSize: batchSize,
			}

			return extractor.Run()
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Base directory with updated_date=* snapshot folders")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for Parquet part files")
	cmd.Flags().IntVar(&startYear, "start-year", 2018, "First publication year to keep")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "Last publication year to keep (default: current year)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 500000, "Maximum rows per Parquet part file")

	_ = cmd.MarkFlagRequired("base-dir")
	_ = cmd.MarkFlagRequired("output-dir")

	return cmd
}
