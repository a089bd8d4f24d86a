package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"engagement-insights/services"
	"engagement-insights/utils"
)

const sampleCSV = `post_type,likes,shares,comments
carousel,100,20,10
Carousel,200,40,20
reels,abc,1,1
static,-5,1,1
static,50,5,5
`

func newCleaner() *services.Cleaner { return services.NewCleaner(utils.NewNopLogger()) }

func TestCSVSourceFetch(t *testing.T) {
	src, err := NewCSVSourceFromReader(strings.NewReader(sampleCSV), newCleaner())
	if err != nil {
		t.Fatalf("NewCSVSourceFromReader: %v", err)
	}

	records, found, err := src.Fetch(context.Background(), "carousel")
	if err != nil || !found {
		t.Fatalf("Fetch carousel: found=%v err=%v", found, err)
	}
	if len(records) != 2 {
		t.Errorf("carousel rows: got %d, want 2", len(records))
	}

	records, found, _ = src.Fetch(context.Background(), "static")
	if !found || len(records) != 1 || records[0].Likes != 50 {
		t.Errorf("static rows: got %+v", records)
	}

	if _, found, _ := src.Fetch(context.Background(), "reels"); found {
		t.Error("reels row had invalid likes and should have been dropped")
	}
}

func TestCSVSourceColumnOrder(t *testing.T) {
	in := "comments,likes,post_type,shares\n3,9,static,1\n"
	src, err := NewCSVSourceFromReader(strings.NewReader(in), newCleaner())
	if err != nil {
		t.Fatal(err)
	}
	records, found, _ := src.Fetch(context.Background(), "static")
	if !found || records[0].Likes != 9 || records[0].Comments != 3 || records[0].Shares != 1 {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestCSVSourceMissingColumn(t *testing.T) {
	_, err := NewCSVSourceFromReader(strings.NewReader("post_type,likes\n"), newCleaner())
	if err == nil || !strings.Contains(err.Error(), "shares") {
		t.Errorf("expected missing column error, got %v", err)
	}
}

func TestCSVSourceEmptyFile(t *testing.T) {
	src, err := NewCSVSourceFromReader(strings.NewReader(""), newCleaner())
	if err != nil {
		t.Fatal(err)
	}
	if _, found, _ := src.Fetch(context.Background(), "carousel"); found {
		t.Error("empty file should yield no data")
	}
}

func TestNewCSVSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engagement.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := NewCSVSource(path, newCleaner())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if _, found, _ := src.Fetch(context.Background(), "carousel"); !found {
		t.Error("expected carousel data from file")
	}

	if _, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), newCleaner()); err == nil {
		t.Error("expected error for missing file")
	}
}
