package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"engagement-insights/models"
	"engagement-insights/services"
)

var csvHeader = []string{"post_type", "likes", "shares", "comments"}

// CSVSource serves engagement records exported to a CSV file.
// The whole file is read and cleaned once, at construction.
type CSVSource struct {
	records []models.EngagementRecord
}

// NewCSVSource opens path and loads every valid row through cleaner.
func NewCSVSource(path string, cleaner *services.Cleaner) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	return NewCSVSourceFromReader(f, cleaner)
}

// NewCSVSourceFromReader is NewCSVSource for an already open stream.
func NewCSVSourceFromReader(r io.Reader, cleaner *services.Cleaner) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &CSVSource{}, nil
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var raw []*models.RawEngagement
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		raw = append(raw, &models.RawEngagement{
			PostType: field(row, cols[0]),
			Likes:    field(row, cols[1]),
			Shares:   field(row, cols[2]),
			Comments: field(row, cols[3]),
		})
	}

	return &CSVSource{records: cleaner.Clean(raw)}, nil
}

// Fetch returns the loaded records for key.
func (c *CSVSource) Fetch(ctx context.Context, key string) ([]models.EngagementRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var out []models.EngagementRecord
	for _, r := range c.records {
		if string(r.PostType) == key {
			out = append(out, r)
		}
	}
	return out, len(out) > 0, nil
}

func (c *CSVSource) Close() error { return nil }

func columnIndex(header []string) ([4]int, error) {
	var idx [4]int
	for i, name := range csvHeader {
		idx[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return idx, fmt.Errorf("csv: missing column %q", name)
		}
	}
	return idx, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
