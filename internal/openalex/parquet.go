package openalex

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
)

// WriteWorks writes works to a single Parquet file.
func WriteWorks(path string, works []Work) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file %s: %w", path, err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Work](file)

	for start := 0; start < len(works); start += 1024 {
		end := start + 1024
		if end > len(works) {
			end = len(works)
		}

		if _, err := writer.Write(works[start:end]); err != nil {
			return fmt.Errorf("failed to write parquet rows to %s: %w", path, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer for %s: %w", path, err)
	}

	return nil
}

// ReadWorks reads all works from one Parquet file.
func ReadWorks(path string) ([]Work, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[Work](pf)
	defer reader.Close()

	var works []Work
	rows := make([]Work, 1024)

	for {
		n, err := reader.Read(rows)
		if n > 0 {
			works = append(works, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	return works, nil
}

// ReadWorksDir reads every Parquet part in a directory, in sorted file
// order. Empty placeholder files written for snapshot days without new
// works are skipped.
func ReadWorksDir(dir string) ([]Work, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("failed to list parquet files in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no parquet files found in %s", dir)
	}
	sort.Strings(paths)

	var works []Work
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat parquet file %s: %w", path, err)
		}
		if info.Size() == 0 {
			continue
		}

		part, err := ReadWorks(path)
		if err != nil {
			return nil, err
		}
		works = append(works, part...)

		slog.Debug("Read parquet part", "path", path, "rows", len(part))
	}

	slog.Info("Loaded extracted works", "dir", dir, "files", len(paths), "works", len(works))

	return works, nil
}
