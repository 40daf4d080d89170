package record

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Write writes integrated records to a Parquet file.
func Write(path string, records []Integrated) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file %s: %w", path, err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Integrated](file)

	for start := 0; start < len(records); start += 1024 {
		end := start + 1024
		if end > len(records) {
			end = len(records)
		}

		if _, err := writer.Write(records[start:end]); err != nil {
			return fmt.Errorf("failed to write parquet rows to %s: %w", path, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer for %s: %w", path, err)
	}

	slog.Info("Wrote integrated records", "path", path, "rows", len(records))

	return nil
}

// Read reads all integrated records from a Parquet file.
func Read(path string) ([]Integrated, error) {
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

	reader := parquet.NewGenericReader[Integrated](pf)
	defer reader.Close()

	var records []Integrated
	rows := make([]Integrated, 1024)

	for {
		n, err := reader.Read(rows)
		if n > 0 {
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Read integrated records", "path", path, "rows", len(records))

	return records, nil
}
