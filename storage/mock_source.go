package storage

import (
	"context"
	"time"

	"engagement-insights/models"
)

// DefaultMockDelay mimics a round trip to a hosted database.
const DefaultMockDelay = 500 * time.Millisecond

var mockRecords = []models.EngagementRecord{
	{PostType: models.Carousel, Likes: 120, Shares: 30, Comments: 15},
	{PostType: models.Reels, Likes: 200, Shares: 60, Comments: 45},
	{PostType: models.Reels, Likes: 180, Shares: 40, Comments: 35},
	{PostType: models.Static, Likes: 80, Shares: 10, Comments: 12},
	{PostType: models.Static, Likes: 60, Shares: 14, Comments: 8},
}

// MockSource serves a fixed in-memory record set after an artificial delay.
type MockSource struct {
	delay time.Duration
}

// NewMockSource creates a MockSource. A negative delay is treated as zero.
func NewMockSource(delay time.Duration) *MockSource {
	if delay < 0 {
		delay = 0
	}
	return &MockSource{delay: delay}
}

// Fetch waits for the configured delay and returns the records whose post type
// equals key exactly. Callers normalise the key first.
func (m *MockSource) Fetch(ctx context.Context, key string) ([]models.EngagementRecord, bool, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	var out []models.EngagementRecord
	for _, r := range mockRecords {
		if string(r.PostType) == key {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

func (m *MockSource) Close() error { return nil }

// MockRecords returns a copy of the built-in record set.
func MockRecords() []models.EngagementRecord {
	out := make([]models.EngagementRecord, len(mockRecords))
	copy(out, mockRecords)
	return out
}
