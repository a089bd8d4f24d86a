package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"engagement-insights/models"
)

func records(pt models.PostType, likes ...int) []models.EngagementRecord {
	out := make([]models.EngagementRecord, 0, len(likes))
	for _, l := range likes {
		out = append(out, models.EngagementRecord{PostType: pt, Likes: l})
	}
	return out
}

func TestInsightSingleRecordKeepsTrailingZero(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r, err := svc.Generate(records(models.Reels, 120))
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatAverage(r.AvgLikes); got != "120.0" {
		t.Errorf("AvgLikes: got %q, want %q", got, "120.0")
	}
}

func TestInsightTwoRecords(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r, err := svc.Generate(records(models.Reels, 100, 200))
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatAverage(r.AvgLikes); got != "150.0" {
		t.Errorf("AvgLikes: got %q, want %q", got, "150.0")
	}
}

func TestInsightRounding(t *testing.T) {
	tests := []struct {
		likes []int
		want  string
	}{
		{[]int{1, 2}, "1.5"},
		{[]int{1, 1, 2}, "1.3"},
		{[]int{1, 2, 2}, "1.7"},
		{[]int{0, 0, 0, 1}, "0.3"},
		{[]int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, "0.1"},
		{[]int{0}, "0.0"},
	}

	svc := NewInsightService(newTestLogger())
	for _, tt := range tests {
		r, err := svc.Generate(records(models.Static, tt.likes...))
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatAverage(r.AvgLikes); got != tt.want {
			t.Errorf("likes %v: got %q, want %q", tt.likes, got, tt.want)
		}
	}
}

func TestInsightCarousel(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r, err := svc.Analyze(context.Background(), "Carousel", []models.EngagementRecord{
		{PostType: models.Carousel, Likes: 120, Shares: 30, Comments: 15},
	})
	if err != nil {
		t.Fatal(err)
	}

	if FormatAverage(r.AvgLikes) != "120.0" || FormatAverage(r.AvgShares) != "30.0" || FormatAverage(r.AvgComments) != "15.0" {
		t.Errorf("averages: got %s/%s/%s", r.AvgLikes, r.AvgShares, r.AvgComments)
	}
	if !r.HasAverages {
		t.Error("local analysis should set HasAverages")
	}
	if r.PostType != "Carousel" {
		t.Errorf("PostType: got %q, want the caller's label", r.PostType)
	}
	for _, want := range []string{"120.0", "30.0", "15.0"} {
		if !strings.Contains(r.Insight, want) {
			t.Errorf("insight %q missing %s", r.Insight, want)
		}
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	if _, err := svc.Generate(nil); !errors.Is(err, ErrNoRecords) {
		t.Errorf("expected ErrNoRecords, got %v", err)
	}
}

func TestPrintReport(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r, _ := svc.Generate(records(models.Reels, 200, 180))

	var buf bytes.Buffer
	PrintReport(&buf, r)
	out := buf.String()
	for _, want := range []string{"POST TYPE: REELS", "190.0", r.Insight} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	buf.Reset()
	PrintReport(&buf, &models.AnalysisResult{PostType: "static", Insight: "remote says hi"})
	if strings.Contains(buf.String(), "Average Engagement") {
		t.Error("report without averages should skip the averages block")
	}
}
