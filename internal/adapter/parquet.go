package adapter

import (
	"log/slog"
	"sort"

	"github.com/scielo-analytics/ocametrics/internal/record"
)

// ParquetSource serves category partitions from an integrated Parquet
// file held in memory. Unmatched records and records lacking a work id
// are dropped at load time; the skip counts are logged.
type ParquetSource struct {
	records []record.Integrated
}

// NewParquetSource loads the integrated records file.
func NewParquetSource(path string) (*ParquetSource, error) {
	records, err := record.Read(path)
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	skippedNoID := 0
	skippedUnmatched := 0

	for i := range records {
		if records[i].WorkID == "" {
			skippedNoID++
			continue
		}
		if records[i].IsUnmatched() {
			skippedUnmatched++
			continue
		}
		kept = append(kept, records[i])
	}

	slog.Info("Loaded integrated records",
		"path", path,
		"kept", len(kept),
		"skipped_missing_work_id", skippedNoID,
		"skipped_unmatched", skippedUnmatched)

	return &ParquetSource{records: kept}, nil
}

// Categories lists the distinct taxonomy values at a level for a year.
func (s *ParquetSource) Categories(year int, level, categoryID string) ([]string, error) {
	set := make(map[string]bool)
	for i := range s.records {
		r := &s.records[i]
		if int(r.PublicationYear) != year {
			continue
		}

		cat := r.Taxonomy(level)
		if cat == "" {
			continue
		}
		if categoryID != "" && cat != categoryID {
			continue
		}
		set[cat] = true
	}

	out := make([]string, 0, len(set))
	for cat := range set {
		out = append(out, cat)
	}
	sort.Strings(out)

	return out, nil
}

// Fetch returns one category partition.
func (s *ParquetSource) Fetch(f Filter) ([]record.Integrated, error) {
	var out []record.Integrated
	for i := range s.records {
		r := &s.records[i]
		if int(r.PublicationYear) != f.Year {
			continue
		}
		if r.Taxonomy(f.Level) != f.CategoryID {
			continue
		}
		out = append(out, *r)
	}

	return out, nil
}
