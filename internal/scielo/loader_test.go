package scielo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempJSONL(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dump.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	return path
}

func TestLoadKeepsRecordsWithDOIInRange(t *testing.T) {
	path := writeTempJSONL(t,
		`{"collection":"scl","pid_v2":"S0001","publication_year":2020,"doi":"10.1590/abc","titles":["A study"]}`,
		`{"collection":"scl","pid_v2":"S0002","publication_year":2020,"titles":["No identifier"]}`,
		`{"collection":"scl","pid_v2":"S0003","publication_year":2010,"doi":"10.1590/old"}`,
		``,
		`{"collection":"scl","pid_v2":"S0004","publication_year":2021,"doi_with_lang":{"es":"10.1590/xyz"}}`,
	)

	docs, err := NewLoader(path).Load(2018, 2024)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].PIDv2 != "S0001" || docs[1].PIDv2 != "S0004" {
		t.Errorf("unexpected documents kept: %s, %s", docs[0].PIDv2, docs[1].PIDv2)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeTempJSONL(t, `{"collection":`)

	if _, err := NewLoader(path).Load(2018, 2024); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestMergedRoundTrip(t *testing.T) {
	docs := []MergedDocument{
		{
			Collections:     []string{"scl", "mex"},
			PIDs:            []string{"S0001", "S0002"},
			PublicationYear: 2020,
			DOI:             "10.1590/abc",
			DOIWithLang:     map[string]string{"es": "10.1590/abc-es"},
			Titles:          []string{"A study"},
			JournalISSNs:    []string{"0001-3765"},
			MemberCount:     2,
		},
		{
			PIDs:            []string{"S0003"},
			PublicationYear: 2021,
			DOI:             "10.1590/def",
			MemberCount:     1,
		},
	}

	path := filepath.Join(t.TempDir(), "merged.jsonl")
	if err := SaveMerged(path, docs); err != nil {
		t.Fatalf("SaveMerged failed: %v", err)
	}

	loaded, err := LoadMerged(path)
	if err != nil {
		t.Fatalf("LoadMerged failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 merged articles, got %d", len(loaded))
	}
	if loaded[0].MemberCount != 2 || len(loaded[0].PIDs) != 2 {
		t.Errorf("unexpected first article: %+v", loaded[0])
	}
	if loaded[0].DOIWithLang["es"] != "10.1590/abc-es" {
		t.Errorf("expected language variant to survive, got %v", loaded[0].DOIWithLang)
	}
}

func TestAllDOIsUnionsVariants(t *testing.T) {
	doc := Document{
		DOI: "https://doi.org/10.1590/ABC",
		DOIWithLang: map[string]string{
			"pt": "10.1590/abc",
			"es": "10.1590/xyz",
		},
	}

	dois := doc.AllDOIs()
	if len(dois) != 2 {
		t.Fatalf("expected 2 distinct DOIs, got %v", dois)
	}
	if dois[0] != "10.1590/abc" || dois[1] != "10.1590/xyz" {
		t.Errorf("unexpected DOI set: %v", dois)
	}
}

func TestPrimaryPIDSkipsEmpty(t *testing.T) {
	m := MergedDocument{PIDs: []string{"", "S0009"}}
	if got := m.PrimaryPID(); got != "S0009" {
		t.Errorf("expected S0009, got %q", got)
	}

	empty := MergedDocument{}
	if got := empty.PrimaryPID(); got != "" {
		t.Errorf("expected empty PID, got %q", got)
	}
}

func TestRichnessCountsPopulatedFields(t *testing.T) {
	poor := Document{PIDv2: "S0001"}
	rich := Document{
		Collection:      "scl",
		PIDv2:           "S0001",
		PublicationYear: 2020,
		DOI:             "10.1590/abc",
		Titles:          []string{"A", "B"},
		JournalTitle:    "Revista",
		JournalISSNs:    []string{"0001-3765"},
	}

	if poor.Richness() >= rich.Richness() {
		t.Errorf("expected richer document to score higher: %d vs %d",
			poor.Richness(), rich.Richness())
	}
}
