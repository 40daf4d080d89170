package adapter

import (
	"log/slog"

	"github.com/scielo-analytics/ocametrics/internal/record"
)

// SearchIndexSource is a placeholder backend for serving partitions from a
// search index instead of Parquet files. It satisfies Source but does not
// return data yet.
//
// TODO: implement Categories/Fetch against the index's terms and filter
// APIs once an index mapping for integrated records is settled.
type SearchIndexSource struct {
	hosts []string
	index string
}

// NewSearchIndexSource creates the skeleton backend.
func NewSearchIndexSource(hosts []string, index string) *SearchIndexSource {
	slog.Warn("SearchIndexSource is not fully implemented", "index", index)

	return &SearchIndexSource{hosts: hosts, index: index}
}

func (s *SearchIndexSource) Categories(year int, level, categoryID string) ([]string, error) {
	return nil, nil
}

func (s *SearchIndexSource) Fetch(f Filter) ([]record.Integrated, error) {
	return nil, nil
}
