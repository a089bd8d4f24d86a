package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PostType identifies the format of a social-media post.
type PostType string

const (
	Carousel PostType = "carousel"
	Reels    PostType = "reels"
	Static   PostType = "static"
)

// PostTypes returns the supported post types in display order.
func PostTypes() []PostType {
	return []PostType{Carousel, Reels, Static}
}

// Valid reports whether p is one of the supported post types.
func (p PostType) Valid() bool {
	for _, t := range PostTypes() {
		if p == t {
			return true
		}
	}
	return false
}

// Title returns the post type with its first letter upper-cased ("Reels").
func (p PostType) Title() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// RawEngagement holds an unvalidated row as read from a CSV export.
type RawEngagement struct {
	PostType string
	Likes    string
	Shares   string
	Comments string
}

// EngagementRecord is one post's engagement counters.
type EngagementRecord struct {
	PostType PostType `json:"post_type"`
	Likes    int      `json:"likes"`
	Shares   int      `json:"shares"`
	Comments int      `json:"comments"`
}

// AnalysisResult is what gets rendered into the results region.
// Remote analysis only fills Insight; local analysis fills the averages too.
type AnalysisResult struct {
	PostType    string
	AvgLikes    decimal.Decimal
	AvgShares   decimal.Decimal
	AvgComments decimal.Decimal
	HasAverages bool
	Insight     string
}
