package metrics

import (
	"math"
	"testing"

	"github.com/scielo-analytics/ocametrics/internal/openalex"
	"github.com/scielo-analytics/ocametrics/internal/record"
)

func rec(journalID string, total, window2 int64) record.Integrated {
	r := record.Integrated{
		Work: openalex.Work{
			WorkID:          "https://openalex.org/W" + journalID,
			PublicationYear: 2020,
			SourceID:        journalID,
			CitationsTotal:  total,
		},
		AllWorkIDs: []string{},
	}
	r.SetCitationsWindow(2, window2)
	return r
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateCategoryEmpty(t *testing.T) {
	if snap := AggregateCategory(nil, "field", "F1", 2020, []int{2}); snap != nil {
		t.Errorf("expected nil snapshot for empty partition, got %+v", snap)
	}
}

func TestAggregateCategoryTotalsAndMeans(t *testing.T) {
	recs := []record.Integrated{
		rec("J1", 10, 4),
		rec("J1", 0, 0),
		rec("J2", 6, 2),
		rec("J2", 4, 0),
	}

	snap := AggregateCategory(recs, "field", "F1", 2020, []int{2})
	if snap == nil {
		t.Fatal("expected a snapshot")
	}

	if snap.Publications != 4 {
		t.Errorf("expected 4 publications, got %d", snap.Publications)
	}
	if snap.CitationsTotal != 20 {
		t.Errorf("expected 20 total citations, got %d", snap.CitationsTotal)
	}
	if !almostEqual(snap.CitationsMean, 5.0) {
		t.Errorf("expected mean 5.0, got %f", snap.CitationsMean)
	}

	win := snap.Windows[2]
	if win.CitationsTotal != 6 {
		t.Errorf("expected window total 6, got %d", win.CitationsTotal)
	}
	if !almostEqual(win.CitationsMean, 1.5) {
		t.Errorf("expected window mean 1.5, got %f", win.CitationsMean)
	}
}

func TestAggregateJournalsNormalizedImpact(t *testing.T) {
	// Journal J1: 4 publications, mean 5. Category: 20 publications,
	// 80 citations, mean 4. Impact should be 5/4 = 1.25.
	recs := make([]record.Integrated, 0, 20)
	for i := 0; i < 4; i++ {
		recs = append(recs, rec("J1", 5, 0))
	}
	for i := 0; i < 16; i++ {
		recs = append(recs, rec("J2", 5, 0))
	}
	recs[4].CitationsTotal = 0
	recs[5].CitationsTotal = 0
	recs[6].CitationsTotal = 0
	recs[7].CitationsTotal = 0
	// J1: 20 citations over 4 pubs (mean 5). J2: 60 over 16 (mean 3.75).
	// Category: 80 over 20 (mean 4).

	snap := AggregateCategory(recs, "field", "F1", 2020, []int{2})
	if !almostEqual(snap.CitationsMean, 4.0) {
		t.Fatalf("expected category mean 4.0, got %f", snap.CitationsMean)
	}

	journals := AggregateJournals(recs, snap, []int{2},
		map[int]int64{5: 11},
		map[int]map[int]int64{5: {2: 1}})

	if len(journals) != 2 {
		t.Fatalf("expected 2 journals, got %d", len(journals))
	}
	if journals[0].JournalID != "J1" || journals[1].JournalID != "J2" {
		t.Errorf("expected journals sorted by id, got %s, %s",
			journals[0].JournalID, journals[1].JournalID)
	}

	j1 := journals[0]
	if !almostEqual(j1.CitationsMean, 5.0) {
		t.Errorf("expected journal mean 5.0, got %f", j1.CitationsMean)
	}
	if !almostEqual(j1.ImpactNormalized, 1.25) {
		t.Errorf("expected normalized impact 1.25, got %f", j1.ImpactNormalized)
	}
}

func TestAggregateJournalsTopShare(t *testing.T) {
	// Journal with 20 publications, 2 of them at or above threshold 11.
	recs := make([]record.Integrated, 0, 20)
	for i := 0; i < 18; i++ {
		recs = append(recs, rec("J1", int64(i%10), 0))
	}
	recs = append(recs, rec("J1", 11, 0))
	recs = append(recs, rec("J1", 30, 0))

	snap := AggregateCategory(recs, "field", "F1", 2020, []int{2})
	journals := AggregateJournals(recs, snap, []int{2},
		map[int]int64{5: 11},
		map[int]map[int]int64{5: {2: 1}})

	top := journals[0].Top[5]
	if top.Threshold != 11 {
		t.Errorf("expected threshold 11, got %d", top.Threshold)
	}
	if top.PublicationsCount != 2 {
		t.Errorf("expected 2 publications above threshold, got %d", top.PublicationsCount)
	}
	if !almostEqual(top.SharePct, 10.0) {
		t.Errorf("expected 10%% share, got %f", top.SharePct)
	}
}

func TestAggregateJournalsCitedWorks(t *testing.T) {
	recs := []record.Integrated{
		rec("J1", 3, 2),
		rec("J1", 1, 0),
		rec("J1", 5, 1),
	}

	snap := AggregateCategory(recs, "field", "F1", 2020, []int{2})
	journals := AggregateJournals(recs, snap, []int{2},
		map[int]int64{5: 1},
		map[int]map[int]int64{5: {2: 1}})

	win := journals[0].Windows[2]
	if win.CitationsTotal != 3 {
		t.Errorf("expected window total 3, got %d", win.CitationsTotal)
	}
	if win.CitedWorks != 2 {
		t.Errorf("expected 2 cited works in window, got %d", win.CitedWorks)
	}
}

func TestAggregateJournalsSkipsRecordsWithoutJournal(t *testing.T) {
	recs := []record.Integrated{
		rec("J1", 3, 0),
		rec("", 100, 0),
	}

	snap := AggregateCategory(recs, "field", "F1", 2020, []int{2})
	journals := AggregateJournals(recs, snap, []int{2},
		map[int]int64{5: 1},
		map[int]map[int]int64{5: {2: 1}})

	if len(journals) != 1 {
		t.Fatalf("expected 1 journal, got %d", len(journals))
	}
	if journals[0].CitationsTotal != 3 {
		t.Errorf("expected journal total 3, got %d", journals[0].CitationsTotal)
	}
}

func TestNormalizedImpactZeroCategoryMean(t *testing.T) {
	if got := NormalizedImpact(2.5, 0); got != 0 {
		t.Errorf("expected 0 for zero category mean, got %f", got)
	}
	if got := NormalizedImpact(5, 4); !almostEqual(got, 1.25) {
		t.Errorf("expected 1.25, got %f", got)
	}
}
