// Package metrics aggregates integrated records into category and journal
// snapshots and assembles per-journal indicator rows.
package metrics

// WindowAggregate holds one citation window's totals over a partition.
type WindowAggregate struct {
	CitationsTotal int64
	CitationsMean  float64
}

// CategorySnapshot aggregates one (level, category, year) partition.
// Partitions are only created with at least one member, so means are
// always well defined.
type CategorySnapshot struct {
	Level           string
	CategoryID      string
	PublicationYear int

	Publications   int
	CitationsTotal int64
	CitationsMean  float64

	Windows map[int]WindowAggregate
}

// JournalWindowAggregate holds one journal's windowed citation metrics
// within a category partition.
type JournalWindowAggregate struct {
	CitationsTotal int64

	// CitedWorks counts the journal's records with at least one citation
	// inside the window.
	CitedWorks int

	CitationsMean    float64
	ImpactNormalized float64
}

// TopMetrics holds one journal's standing against a percentile threshold.
type TopMetrics struct {
	Threshold         int64
	PublicationsCount int
	SharePct          float64
}

// JournalSnapshot aggregates one journal inside a category partition.
type JournalSnapshot struct {
	JournalID   string
	JournalISSN string

	Publications     int
	CitationsTotal   int64
	CitationsMean    float64
	ImpactNormalized float64

	Windows map[int]JournalWindowAggregate

	// Top is keyed by q = 100 - p; TopWindows by q then window width.
	Top        map[int]TopMetrics
	TopWindows map[int]map[int]TopMetrics
}

// NormalizedImpact is the ratio of a journal's citation mean to its
// category's, defined as 0 when the category mean is 0. Never faults.
func NormalizedImpact(journalMean, categoryMean float64) float64 {
	if categoryMean == 0 {
		return 0
	}

	return journalMean / categoryMean
}
