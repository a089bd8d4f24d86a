package storage

import (
	"context"

	"engagement-insights/models"
)

// EngagementSource is the interface any engagement backend must satisfy.
// Fetch reports found=false when nothing matches key; it never returns an
// empty slice with found=true.
type EngagementSource interface {
	Fetch(ctx context.Context, key string) (records []models.EngagementRecord, found bool, err error)
	Close() error
}
