// Package metadata loads the journal enrichment table: per-journal,
// per-year descriptive columns joined onto indicator rows.
package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/scielo-analytics/ocametrics/internal/normalize"
)

// Row is one journal's metadata for one publication year.
type Row struct {
	JournalID            string
	PublicationYear      int
	JournalTitle         string
	JournalISSN          string
	PublisherName        string
	Country              string
	IsSciELO             bool
	ScieloActiveValid    string
	ScieloCollectionAcr  string
	ScieloNetworkCountry string
}

// Table indexes metadata rows by (canonical journal id, year).
type Table struct {
	rows map[string]Row
}

func tableKey(journalID string, year int) string {
	return normalize.OpenAlexID(journalID) + "|" + strconv.Itoa(year)
}

// Load reads the enrichment table from CSV. The header row names the
// columns; unknown columns are ignored, missing required columns are
// fatal with the column named.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata table %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata header from %s: %w", path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{"journal_id", "publication_year", "journal_title"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("metadata table %s is missing required column %q", path, required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	table := &Table{rows: make(map[string]Row)}
	lineNum := 1

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata table %s line %d: %w", path, lineNum+1, err)
		}
		lineNum++

		year := normalize.Year(field(rec, "publication_year"))
		journalID := field(rec, "journal_id")
		if journalID == "" || year == 0 {
			continue
		}

		row := Row{
			JournalID:            normalize.OpenAlexID(journalID),
			PublicationYear:      year,
			JournalTitle:         field(rec, "journal_title"),
			JournalISSN:          field(rec, "journal_issn"),
			PublisherName:        field(rec, "publisher_name"),
			Country:              field(rec, "country"),
			IsSciELO:             parseBool(field(rec, "is_scielo")),
			ScieloActiveValid:    field(rec, "scielo_active_valid"),
			ScieloCollectionAcr:  field(rec, "scielo_collection_acronym"),
			ScieloNetworkCountry: field(rec, "scielo_network_country"),
		}

		table.rows[tableKey(row.JournalID, year)] = row
	}

	slog.Info("Loaded journal metadata", "path", path, "rows", len(table.rows))

	return table, nil
}

// Lookup returns the metadata row for a journal and year.
func (t *Table) Lookup(journalID string, year int) (Row, bool) {
	if t == nil {
		return Row{}, false
	}

	row, ok := t.rows[tableKey(journalID, year)]

	return row, ok
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
