package services

import (
	"strconv"
	"strings"
	"unicode"

	"engagement-insights/models"
	"engagement-insights/utils"
)

// Cleaner transforms RawEngagement rows into validated EngagementRecords.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw rows and returns the valid records. Rows with an
// unknown post type or a missing/negative counter are dropped.
func (c *Cleaner) Clean(raw []*models.RawEngagement) []models.EngagementRecord {
	result := make([]models.EngagementRecord, 0, len(raw))

	for i, r := range raw {
		pt := models.PostType(NormalisePostType(r.PostType))
		if !pt.Valid() {
			c.logger.Warn("[cleaner] Row %d: dropping unknown post type %q", i+1, r.PostType)
			continue
		}

		likes, ok1 := parseCount(r.Likes)
		shares, ok2 := parseCount(r.Shares)
		comments, ok3 := parseCount(r.Comments)
		if !ok1 || !ok2 || !ok3 {
			c.logger.Warn("[cleaner] Row %d: dropping %s row with invalid counters (%q, %q, %q)",
				i+1, pt, r.Likes, r.Shares, r.Comments)
			continue
		}

		result = append(result, models.EngagementRecord{
			PostType: pt,
			Likes:    likes,
			Shares:   shares,
			Comments: comments,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d rows (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// NormalisePostType trims whitespace and lower-cases a user-supplied key.
func NormalisePostType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseCount accepts a non-negative integer, tolerating thousands separators ("1,200").
func parseCount(raw string) (int, bool) {
	s := strings.Map(func(r rune) rune {
		if r == ',' || r == '_' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
