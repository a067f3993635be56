package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"rooms-aggregator/models"
)

var csvHeader = []string{
	"source", "title", "price", "currency", "room_type", "area_m2", "location", "url", "image_url",
}

// CSVWriter exports aggregated listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
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
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing. Unknown prices and areas are left blank.
func (c *CSVWriter) Write(listings []models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		if err := c.writer.Write(csvRow(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func csvRow(l models.Listing) []string {
	price := ""
	if l.Price != nil {
		price = strconv.Itoa(*l.Price)
	}
	area := ""
	if l.Area != nil {
		area = strconv.FormatFloat(*l.Area, 'f', -1, 64)
	}
	return []string{
		string(l.Source),
		l.Title,
		price,
		l.Currency,
		string(l.RoomType),
		area,
		l.Location,
		l.URL,
		l.ImageURL,
	}
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}
