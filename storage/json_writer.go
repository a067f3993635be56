package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rooms-aggregator/models"
)

// JSONWriter collects listings and writes them as one indented JSON array on Close.
type JSONWriter struct {
	mu       sync.Mutex
	path     string
	listings []models.Listing
}

// NewJSONWriter checks that the output location is writable.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{path: path, listings: []models.Listing{}}, nil
}

func (j *JSONWriter) Write(listings []models.Listing) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.listings = append(j.listings, listings...)
	return nil
}

// Close writes the collected listings to disk.
func (j *JSONWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.MarshalIndent(j.listings, "", "  ")
	if err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}
	if err := os.WriteFile(j.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", j.path, err)
	}
	return nil
}
