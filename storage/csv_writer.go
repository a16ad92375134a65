package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"estate-browser/models"
)

var csvHeader = []string{
	"snapshot_id", "exported_at", "category", "position", "listing_id", "name", "address",
	"type", "offer", "regular_price", "discount_price", "bedrooms", "bathrooms", "image_urls",
}

// CSVWriter appends exported feed snapshots to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter opens the CSV file at the given path for appending, writing
// the header row when the file is new or empty. Intermediate directories
// are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

func (c *CSVWriter) Name() string { return "csv:" + c.path }

// WriteSnapshot appends one row per listing of the snapshot.
func (c *CSVWriter) WriteSnapshot(snap *models.FeedSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range snap.Rows {
		if err := c.writer.Write(csvRow(snap, r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func csvRow(snap *models.FeedSnapshot, r models.FeedRow) []string {
	l := r.Listing
	discount := ""
	if l.DiscountPrice != nil {
		discount = strconv.FormatFloat(*l.DiscountPrice, 'f', -1, 64)
	}
	return []string{
		snap.ID,
		snap.ExportedAt.UTC().Format(time.RFC3339),
		string(r.Category),
		strconv.Itoa(r.Position),
		l.ID,
		l.Title,
		l.Address,
		string(l.Type),
		strconv.FormatBool(l.Offer),
		strconv.FormatFloat(l.RegularPrice, 'f', -1, 64),
		discount,
		strconv.Itoa(l.Bedrooms),
		strconv.Itoa(l.Bathrooms),
		strings.Join(l.ImageURLs, " "),
	}
}
