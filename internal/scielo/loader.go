package scielo

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Loader reads SciELO article dumps.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given JSONL dump.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads documents from the JSONL dump, keeping only records inside
// [startYear, endYear] that carry at least one DOI. Records without any DOI
// can never cross-link, so they are skipped and counted, matching the
// error-handling contract for missing mandatory identifiers.
func (l *Loader) Load(startYear, endYear int) ([]Document, error) {
	slog.Debug("Opening SciELO JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SciELO dump %s: %w", l.path, err)
	}
	defer file.Close()

	var docs []Document
	scanner := bufio.NewScanner(file)

	// SciELO lines carry full article metadata; allow large records.
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	skippedNoDOI := 0
	skippedYear := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var doc Document
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse SciELO record at %s line %d: %w", l.path, lineNum, err)
		}

		if doc.PublicationYear < startYear || doc.PublicationYear > endYear {
			skippedYear++
			continue
		}

		if len(doc.AllDOIs()) == 0 {
			skippedNoDOI++
			continue
		}

		docs = append(docs, doc)

		if lineNum%10000 == 0 {
			slog.Debug("Reading SciELO JSONL", "lines_read", lineNum, "kept", len(docs))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SciELO dump %s: %w", l.path, err)
	}

	slog.Info("Loaded SciELO documents",
		"path", l.path,
		"total_lines", lineNum,
		"kept", len(docs),
		"skipped_no_doi", skippedNoDOI,
		"skipped_out_of_range", skippedYear)

	return docs, nil
}

// LoadMerged reads previously merged articles from a JSONL file.
func LoadMerged(path string) ([]MergedDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open merged articles file %s: %w", path, err)
	}
	defer file.Close()

	var docs []MergedDocument
	scanner := bufio.NewScanner(file)

	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var doc MergedDocument
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse merged article at %s line %d: %w", path, lineNum, err)
		}

		docs = append(docs, doc)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading merged articles %s: %w", path, err)
	}

	slog.Info("Loaded merged articles", "path", path, "count", len(docs))

	return docs, nil
}

// SaveMerged writes merged articles as JSONL.
func SaveMerged(path string, docs []MergedDocument) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create merged articles file %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)

	for i := range docs {
		if err := enc.Encode(&docs[i]); err != nil {
			return fmt.Errorf("failed to write merged article %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush merged articles file %s: %w", path, err)
	}

	slog.Info("Saved merged articles", "path", path, "count", len(docs))

	return nil
}
