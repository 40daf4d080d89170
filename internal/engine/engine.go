// Package engine drives the indicator computation: per category and year
// it aggregates the partition, computes percentile thresholds, joins
// journal metadata and emits indicator rows.
package engine

import (
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/scielo-analytics/ocametrics/internal/adapter"
	"github.com/scielo-analytics/ocametrics/internal/config"
	"github.com/scielo-analytics/ocametrics/internal/metadata"
	"github.com/scielo-analytics/ocametrics/internal/metrics"
	"github.com/scielo-analytics/ocametrics/internal/percentile"
	"github.com/scielo-analytics/ocametrics/internal/report"
)

// Engine computes indicator rows from a record source.
type Engine struct {
	source adapter.Source
	meta   *metadata.Table
	cfg    config.Indicators
}

// New creates an engine. meta may be nil: journal info then falls back to
// the journal id.
func New(source adapter.Source, meta *metadata.Table, cfg config.Indicators) *Engine {
	return &Engine{source: source, meta: meta, cfg: cfg}
}

// Run computes indicators for every category of the level across the
// years and streams them to the writer. Categories are computed in
// parallel per year; rows are written in category order, so output is
// deterministic.
func (e *Engine) Run(years []int, level, categoryID string, w *report.Writer) error {
	for _, year := range years {
		categories, err := e.source.Categories(year, level, categoryID)
		if err != nil {
			return fmt.Errorf("failed to list categories for %s/%d: %w", level, year, err)
		}

		slog.Info("Processing year", "year", year, "level", level, "categories", len(categories))

		rowsByCategory := make([][]report.IndicatorRow, len(categories))

		var g errgroup.Group
		g.SetLimit(runtime.NumCPU())

		for i, catID := range categories {
			g.Go(func() error {
				rows, err := e.ProcessCategory(year, level, catID)
				if err != nil {
					return err
				}
				rowsByCategory[i] = rows
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		for i, rows := range rowsByCategory {
			if len(rows) == 0 {
				continue
			}
			if err := w.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows for %s: %w", categories[i], err)
			}
		}
	}

	return nil
}

// ProcessCategory computes the indicator rows of one category partition.
// An empty partition yields no rows.
func (e *Engine) ProcessCategory(year int, level, catID string) ([]report.IndicatorRow, error) {
	recs, err := e.source.Fetch(adapter.Filter{Year: year, Level: level, CategoryID: catID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partition %s/%s/%d: %w", level, catID, year, err)
	}

	category := metrics.AggregateCategory(recs, level, catID, year, e.cfg.Windows)
	if category == nil {
		return nil, nil
	}

	method := percentile.Method(e.cfg.QuantileMethod)

	thresholds := make(map[int]int64, len(e.cfg.Percentiles))
	windowThresholds := make(map[int]map[int]int64, len(e.cfg.Percentiles))

	dist := metrics.Distribution(recs)
	for _, p := range e.cfg.Percentiles {
		q := 100 - p
		thresholds[q] = percentile.Threshold(dist, p, method)

		windowThresholds[q] = make(map[int]int64, len(e.cfg.Windows))
		for _, win := range e.cfg.Windows {
			windowThresholds[q][win] = percentile.Threshold(metrics.WindowDistribution(recs, win), p, method)
		}
	}

	journals := metrics.AggregateJournals(recs, category, e.cfg.Windows, thresholds, windowThresholds)

	rows := make([]report.IndicatorRow, 0, len(journals))
	for _, snap := range journals {
		rows = append(rows, report.IndicatorRow{
			CategoryLevel:   level,
			CategoryID:      catID,
			PublicationYear: year,
			Journal:         e.journalInfo(snap, year),
			Category:        category,
			Snapshot:        snap,
		})
	}

	return rows, nil
}

// journalInfo joins the metadata table, falling back to the identifiers
// carried by the records themselves.
func (e *Engine) journalInfo(snap metrics.JournalSnapshot, year int) report.JournalInfo {
	info := report.JournalInfo{
		JournalID:    snap.JournalID,
		JournalISSN:  snap.JournalISSN,
		JournalTitle: snap.JournalID,
	}

	if row, ok := e.meta.Lookup(snap.JournalID, year); ok {
		if row.JournalTitle != "" {
			info.JournalTitle = row.JournalTitle
		}
		if row.JournalISSN != "" {
			info.JournalISSN = row.JournalISSN
		}
		info.Country = row.Country
		info.PublisherName = row.PublisherName
		info.ScieloCollectionAcr = row.ScieloCollectionAcr
		info.ScieloNetworkCountry = row.ScieloNetworkCountry
		info.ScieloActiveValid = row.ScieloActiveValid
		info.IsSciELO = row.IsSciELO
	}

	return info
}
