package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"car-scraper/models"
)

// ReadCSV loads the records of a file written by CSVWriter.
func ReadCSV(path string) ([]*models.ListingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	var recs []*models.ListingRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		rec, err := models.RecordFromRow(header, row)
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
}

// WriteTable writes header and rows to path in one go, replacing any
// existing file.
func WriteTable(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write rows: %w", err)
	}
	return f.Close()
}
