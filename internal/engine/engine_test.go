package engine

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/scielo-analytics/ocametrics/internal/adapter"
	"github.com/scielo-analytics/ocametrics/internal/config"
	"github.com/scielo-analytics/ocametrics/internal/openalex"
	"github.com/scielo-analytics/ocametrics/internal/record"
	"github.com/scielo-analytics/ocametrics/internal/report"
)

// memorySource serves a fixed record set for testing.
type memorySource struct {
	records []record.Integrated
}

func (s *memorySource) Categories(year int, level, categoryID string) ([]string, error) {
	set := make(map[string]bool)
	var out []string
	for i := range s.records {
		r := &s.records[i]
		if int(r.PublicationYear) != year {
			continue
		}
		cat := r.Taxonomy(level)
		if cat == "" || set[cat] {
			continue
		}
		if categoryID != "" && cat != categoryID {
			continue
		}
		set[cat] = true
		out = append(out, cat)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memorySource) Fetch(f adapter.Filter) ([]record.Integrated, error) {
	var out []record.Integrated
	for i := range s.records {
		r := &s.records[i]
		if int(r.PublicationYear) == f.Year && r.Taxonomy(f.Level) == f.CategoryID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func testRecord(workID, field, journal string, year int32, total int64) record.Integrated {
	return record.Integrated{
		Work: openalex.Work{
			WorkID:          workID,
			PublicationYear: year,
			Field:           field,
			SourceID:        journal,
			CitationsTotal:  total,
		},
		AllWorkIDs: []string{workID},
	}
}

func testConfig() config.Indicators {
	return config.Indicators{
		Percentiles:    []int{95, 50},
		Windows:        []int{2},
		QuantileMethod: "linear",
	}
}

func TestProcessCategoryEmptyPartition(t *testing.T) {
	eng := New(&memorySource{}, nil, testConfig())

	rows, err := eng.ProcessCategory(2020, "field", "Ecology")
	if err != nil {
		t.Fatalf("ProcessCategory failed: %v", err)
	}
	if rows != nil {
		t.Errorf("expected no rows for empty partition, got %d", len(rows))
	}
}

func TestProcessCategoryRows(t *testing.T) {
	src := &memorySource{records: []record.Integrated{
		testRecord("W1", "Ecology", "S1", 2020, 10),
		testRecord("W2", "Ecology", "S1", 2020, 0),
		testRecord("W3", "Ecology", "S2", 2020, 5),
		testRecord("W4", "Ecology", "S2", 2020, 5),
	}}

	eng := New(src, nil, testConfig())

	rows, err := eng.ProcessCategory(2020, "field", "Ecology")
	if err != nil {
		t.Fatalf("ProcessCategory failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 journal rows, got %d", len(rows))
	}

	if rows[0].Journal.JournalID != "S1" || rows[1].Journal.JournalID != "S2" {
		t.Errorf("expected journals in id order, got %s, %s",
			rows[0].Journal.JournalID, rows[1].Journal.JournalID)
	}

	// Category mean is 5; S2's mean is 5, impact 1.0.
	if got := rows[1].Snapshot.ImpactNormalized; got != 1.0 {
		t.Errorf("expected impact 1.0 for S2, got %f", got)
	}

	// Without a metadata table the title falls back to the journal id.
	if rows[0].Journal.JournalTitle != "S1" {
		t.Errorf("expected fallback title S1, got %q", rows[0].Journal.JournalTitle)
	}

	// Thresholds are keyed by q = 100 - p.
	if _, ok := rows[0].Snapshot.Top[5]; !ok {
		t.Error("expected top metrics under q=5")
	}
	if _, ok := rows[0].Snapshot.Top[50]; !ok {
		t.Error("expected top metrics under q=50")
	}
}

func TestRunWritesDeterministicOutput(t *testing.T) {
	src := &memorySource{records: []record.Integrated{
		testRecord("W1", "Zoology", "S1", 2020, 3),
		testRecord("W2", "Agronomy", "S2", 2020, 4),
		testRecord("W3", "Agronomy", "S3", 2020, 2),
	}}

	run := func() [][]string {
		path := filepath.Join(t.TempDir(), "out.csv")
		w, err := report.NewWriter(path, []int{2}, []int{95, 50}, false)
		if err != nil {
			t.Fatalf("NewWriter failed: %v", err)
		}

		eng := New(src, nil, testConfig())
		if err := eng.Run([]int{2020}, "field", "", w); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("failed to open output: %v", err)
		}
		defer f.Close()

		rows, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		return rows
	}

	first := run()
	if len(first) != 4 { // header + 3 journals
		t.Fatalf("expected 4 output rows, got %d", len(first))
	}

	// Categories come out sorted, journals sorted inside each.
	if first[1][1] != "Agronomy" || first[2][1] != "Agronomy" || first[3][1] != "Zoology" {
		t.Errorf("unexpected category order: %s, %s, %s", first[1][1], first[2][1], first[3][1])
	}

	second := run()
	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("output differs between runs at row %d col %d: %q vs %q",
					i, j, first[i][j], second[i][j])
			}
		}
	}
}

func TestRunRestrictsToCategory(t *testing.T) {
	src := &memorySource{records: []record.Integrated{
		testRecord("W1", "Zoology", "S1", 2020, 3),
		testRecord("W2", "Agronomy", "S2", 2020, 4),
	}}

	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := report.NewWriter(path, []int{2}, []int{95, 50}, false)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	eng := New(src, nil, testConfig())
	if err := eng.Run([]int{2020}, "field", "Zoology", w); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[1][1] != "Zoology" {
		t.Errorf("expected only Zoology, got %s", rows[1][1])
	}
}
