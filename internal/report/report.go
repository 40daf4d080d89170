// Package report renders indicator rows to CSV with a fixed column order.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/scielo-analytics/ocametrics/internal/metrics"
	"github.com/scielo-analytics/ocametrics/internal/normalize"
)

// JournalInfo holds the descriptive columns joined from the metadata
// table.
type JournalInfo struct {
	JournalID            string
	JournalISSN          string
	JournalTitle         string
	Country              string
	PublisherName        string
	ScieloCollectionAcr  string
	ScieloNetworkCountry string
	ScieloActiveValid    string
	IsSciELO             bool
}

// IndicatorRow is one output row: one journal inside one category
// partition.
type IndicatorRow struct {
	CategoryLevel   string
	CategoryID      string
	PublicationYear int

	Journal JournalInfo

	Category *metrics.CategorySnapshot
	Snapshot metrics.JournalSnapshot
}

// Writer streams indicator rows to CSV, writing the header once.
type Writer struct {
	file    *os.File
	csv     *csv.Writer
	windows []int
	qs      []int

	wroteHeader bool
	shortenIDs  bool
}

// NewWriter creates a CSV writer for the given windows and target
// percentiles (p values; columns are named by q = 100 - p).
func NewWriter(path string, windows, percentiles []int, shortenIDs bool) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	qs := make([]int, 0, len(percentiles))
	for _, p := range percentiles {
		qs = append(qs, 100-p)
	}

	return &Writer{
		file:       file,
		csv:        csv.NewWriter(file),
		windows:    windows,
		qs:         qs,
		shortenIDs: shortenIDs,
	}, nil
}

// Header returns the output column names in order.
func (w *Writer) Header() []string {
	cols := []string{"category_level", "category_id", "publication_year"}

	cols = append(cols,
		"journal_id", "journal_issn", "journal_title", "country", "publisher_name",
		"scielo_collection_acronym", "scielo_network_country", "scielo_active_valid", "is_scielo")

	cols = append(cols,
		"category_publications_count", "category_citations_total", "category_citations_mean")
	for _, win := range w.windows {
		cols = append(cols,
			fmt.Sprintf("category_citations_total_window_%dy", win),
			fmt.Sprintf("category_citations_mean_window_%dy", win))
	}

	cols = append(cols,
		"journal_publications_count", "journal_citations_total", "journal_citations_mean",
		"journal_impact_normalized")
	for _, win := range w.windows {
		cols = append(cols,
			fmt.Sprintf("citations_window_%dy", win),
			fmt.Sprintf("citations_window_%dy_works", win),
			fmt.Sprintf("journal_citations_mean_window_%dy", win),
			fmt.Sprintf("journal_impact_normalized_window_%dy", win))
	}

	for _, q := range w.qs {
		cols = append(cols,
			fmt.Sprintf("top_%dpct_all_time_citations_threshold", q),
			fmt.Sprintf("top_%dpct_all_time_publications_count", q),
			fmt.Sprintf("top_%dpct_all_time_publications_share_pct", q))
		for _, win := range w.windows {
			cols = append(cols,
				fmt.Sprintf("top_%dpct_window_%dy_citations_threshold", q, win),
				fmt.Sprintf("top_%dpct_window_%dy_publications_count", q, win),
				fmt.Sprintf("top_%dpct_window_%dy_publications_share_pct", q, win))
		}
	}

	return cols
}

// WriteRows appends rows to the CSV, emitting the header first if needed.
func (w *Writer) WriteRows(rows []IndicatorRow) error {
	if !w.wroteHeader {
		if err := w.csv.Write(w.Header()); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		w.wroteHeader = true
	}

	for i := range rows {
		if err := w.csv.Write(w.values(&rows[i])); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.csv.Flush()

	return w.csv.Error()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}

	return w.file.Close()
}

func (w *Writer) values(row *IndicatorRow) []string {
	categoryID := row.CategoryID
	journalID := row.Journal.JournalID
	if w.shortenIDs {
		categoryID = normalize.ShortOpenAlexID(categoryID)
		journalID = normalize.ShortOpenAlexID(journalID)
	}

	vals := []string{
		row.CategoryLevel,
		categoryID,
		strconv.Itoa(row.PublicationYear),
		journalID,
		row.Journal.JournalISSN,
		row.Journal.JournalTitle,
		row.Journal.Country,
		row.Journal.PublisherName,
		row.Journal.ScieloCollectionAcr,
		row.Journal.ScieloNetworkCountry,
		row.Journal.ScieloActiveValid,
		formatBool(row.Journal.IsSciELO),
	}

	vals = append(vals,
		strconv.Itoa(row.Category.Publications),
		strconv.FormatInt(row.Category.CitationsTotal, 10),
		formatFloat(row.Category.CitationsMean))
	for _, win := range w.windows {
		agg := row.Category.Windows[win]
		vals = append(vals,
			strconv.FormatInt(agg.CitationsTotal, 10),
			formatFloat(agg.CitationsMean))
	}

	snap := &row.Snapshot
	vals = append(vals,
		strconv.Itoa(snap.Publications),
		strconv.FormatInt(snap.CitationsTotal, 10),
		formatFloat(snap.CitationsMean),
		formatFloat(snap.ImpactNormalized))
	for _, win := range w.windows {
		agg := snap.Windows[win]
		vals = append(vals,
			strconv.FormatInt(agg.CitationsTotal, 10),
			strconv.Itoa(agg.CitedWorks),
			formatFloat(agg.CitationsMean),
			formatFloat(agg.ImpactNormalized))
	}

	for _, q := range w.qs {
		top := snap.Top[q]
		vals = append(vals,
			strconv.FormatInt(top.Threshold, 10),
			strconv.Itoa(top.PublicationsCount),
			formatFloat(top.SharePct))
		for _, win := range w.windows {
			wTop := snap.TopWindows[q][win]
			vals = append(vals,
				strconv.FormatInt(wTop.Threshold, 10),
				strconv.Itoa(wTop.PublicationsCount),
				formatFloat(wTop.SharePct))
		}
	}

	return vals
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
