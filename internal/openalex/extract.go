package openalex

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
)

// snapshot JSON shapes, limited to the fields the extraction keeps.
type snapshotLocation struct {
	Source *snapshotSource `json:"source"`
}

type snapshotSource struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	ISSNL string `json:"issn_l"`
}

type snapshotTopicRef struct {
	DisplayName string `json:"display_name"`
}

type snapshotTopic struct {
	DisplayName string           `json:"display_name"`
	Score       float64          `json:"score"`
	Domain      snapshotTopicRef `json:"domain"`
	Field       snapshotTopicRef `json:"field"`
	Subfield    snapshotTopicRef `json:"subfield"`
}

type snapshotCount struct {
	Year         int32 `json:"year"`
	CitedByCount int64 `json:"cited_by_count"`
}

type snapshotWork struct {
	ID              string             `json:"id"`
	Type            string             `json:"type"`
	IsXpac          bool               `json:"is_xpac"`
	PublicationYear int32              `json:"publication_year"`
	Language        string             `json:"language"`
	DOI             string             `json:"doi"`
	CitedByCount    int64              `json:"cited_by_count"`
	PrimaryLocation *snapshotLocation  `json:"primary_location"`
	Locations       []snapshotLocation `json:"locations"`
	PrimaryTopic    *snapshotTopic     `json:"primary_topic"`
	CountsByYear    []snapshotCount    `json:"counts_by_year"`
}

// Extractor turns gzip JSONL snapshot folders into Parquet part files.
type Extractor struct {
	BaseDir   string
	OutputDir string
	StartYear int
	EndYear   int
	BatchSize int
}

// Run walks the snapshot folders newest-first, parses each part file and
// writes one or more Parquet parts per snapshot day. Work ids already seen
// in a newer snapshot day are skipped, so each work appears once with its
// most recent counts.
func (e *Extractor) Run() error {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", e.OutputDir, err)
	}

	folders, err := filepath.Glob(filepath.Join(e.BaseDir, "updated_date=*"))
	if err != nil {
		return fmt.Errorf("failed to list snapshot folders in %s: %w", e.BaseDir, err)
	}
	if len(folders) == 0 {
		return fmt.Errorf("no updated_date=* folders found in %s", e.BaseDir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(folders)))

	seen := make(map[string]bool)
	skippedNoID := 0

	for _, folder := range folders {
		date := strings.TrimPrefix(filepath.Base(folder), "updated_date=")

		files, err := filepath.Glob(filepath.Join(folder, "part_*.gz"))
		if err != nil {
			return fmt.Errorf("failed to list part files in %s: %w", folder, err)
		}
		sort.Strings(files)

		slog.Info("Processing snapshot day", "date", date, "files", len(files))

		var dayWorks []Work
		for _, path := range files {
			works, skipped, err := e.extractFile(path)
			if err != nil {
				return err
			}
			skippedNoID += skipped

			for i := range works {
				if seen[works[i].WorkID] {
					continue
				}
				seen[works[i].WorkID] = true
				dayWorks = append(dayWorks, works[i])
			}
		}

		if err := e.writeParts(date, dayWorks); err != nil {
			return err
		}
	}

	slog.Info("Extraction complete", "works", len(seen), "skipped_missing_work_id", skippedNoID)

	return nil
}

// extractFile decompresses one part file and parses its lines in parallel
// chunks. Chunk results are reassembled in chunk order, so the output is
// deterministic regardless of scheduling.
func (e *Extractor) extractFile(path string) ([]Work, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open snapshot part %s: %w", path, err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decompress snapshot part %s: %w", path, err)
	}
	defer zr.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(zr)

	const maxCapacity = 64 * 1024 * 1024
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("error reading snapshot part %s: %w", path, err)
	}

	workers := runtime.NumCPU()
	chunkSize := (len(lines) + workers - 1) / workers
	if chunkSize == 0 {
		return nil, 0, nil
	}

	type chunkResult struct {
		works   []Work
		skipped int
	}
	results := make([]chunkResult, workers)

	var g errgroup.Group
	for c := 0; c < workers; c++ {
		start := c * chunkSize
		if start >= len(lines) {
			break
		}
		end := start + chunkSize
		if end > len(lines) {
			end = len(lines)
		}

		g.Go(func() error {
			works, skipped := e.parseChunk(lines[start:end])
			results[c] = chunkResult{works: works, skipped: skipped}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var works []Work
	skipped := 0
	for _, r := range results {
		works = append(works, r.works...)
		skipped += r.skipped
	}

	return works, skipped, nil
}

// parseChunk converts snapshot lines to Works, dropping non-article and
// out-of-range entries. Works without an id are counted, not fatal.
func (e *Extractor) parseChunk(lines [][]byte) ([]Work, int) {
	var works []Work
	skipped := 0

	for _, line := range lines {
		if len(line) == 0 {
			continue
		}

		var src snapshotWork
		if err := json.Unmarshal(line, &src); err != nil {
			skipped++
			continue
		}

		if src.Type != "article" || src.IsXpac {
			continue
		}

		if int(src.PublicationYear) < e.StartYear || int(src.PublicationYear) > e.EndYear {
			continue
		}

		if src.ID == "" {
			skipped++
			continue
		}

		source := journalSource(&src)
		if source == nil {
			continue
		}

		work := Work{
			WorkID:          src.ID,
			PublicationYear: src.PublicationYear,
			Language:        src.Language,
			DOI:             src.DOI,
			SourceID:        source.ID,
			SourceISSNL:     source.ISSNL,
			CitationsTotal:  src.CitedByCount,
		}

		if pt := src.PrimaryTopic; pt != nil {
			work.Domain = pt.Domain.DisplayName
			work.Field = pt.Field.DisplayName
			work.Subfield = pt.Subfield.DisplayName
			work.Topic = pt.DisplayName
			work.TopicScore = pt.Score
		}

		windowSums := map[int]int64{2: 0, 3: 0, 5: 0}
		for _, cy := range src.CountsByYear {
			if cy.Year == 0 {
				continue
			}

			if work.CitationsByYear == nil {
				work.CitationsByYear = make(map[int32]int64)
			}
			work.CitationsByYear[cy.Year] = cy.CitedByCount

			// A window of w years covers citations in (pub_year, pub_year+w].
			if cy.Year > src.PublicationYear {
				for _, w := range Windows {
					if cy.Year <= src.PublicationYear+int32(w) {
						windowSums[w] += cy.CitedByCount
					}
				}
			}
		}

		for _, w := range Windows {
			work.SetCitationsWindow(w, windowSums[w])
		}

		works = append(works, work)
	}

	return works, skipped
}

// journalSource picks the work's journal source: the primary location when
// it is a journal, otherwise the first journal among all locations.
func journalSource(src *snapshotWork) *snapshotSource {
	if pl := src.PrimaryLocation; pl != nil && pl.Source != nil && pl.Source.Type == "journal" {
		return pl.Source
	}

	for _, loc := range src.Locations {
		if loc.Source != nil && loc.Source.Type == "journal" {
			return loc.Source
		}
	}

	return nil
}

// writeParts writes a snapshot day's works as Parquet part files of at
// most BatchSize rows each.
func (e *Extractor) writeParts(date string, works []Work) error {
	if len(works) == 0 {
		slog.Info("Snapshot day produced no new works", "date", date)
		return nil
	}

	batch := e.BatchSize
	if batch <= 0 {
		batch = 500000
	}

	part := 0
	for start := 0; start < len(works); start += batch {
		end := start + batch
		if end > len(works) {
			end = len(works)
		}

		path := filepath.Join(e.OutputDir, fmt.Sprintf("metrics_%s_part_%d.parquet", date, part))
		if err := WriteWorks(path, works[start:end]); err != nil {
			return err
		}

		slog.Info("Wrote Parquet part", "path", path, "rows", end-start)
		part++
	}

	return nil
}
