package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"car-scraper/models"
)

// CSVWriter appends listing records to a CSV file with the fixed column
// set. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.Columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

// Write appends one row and flushes it, so a run that is interrupted keeps
// every record written so far.
func (c *CSVWriter) Write(rec *models.ListingRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(rec.Row()); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	c.rows++
	return nil
}

// Rows returns how many records have been written.
func (c *CSVWriter) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

func (c *CSVWriter) Path() string { return c.path }

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return c.file.Close()
}
