package ui

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-insights/models"
)

func TestFragmentWithAverages(t *testing.T) {
	html, err := Fragment(&models.AnalysisResult{
		PostType:    "carousel",
		AvgLikes:    decimal.NewFromInt(120),
		AvgShares:   decimal.RequireFromString("30.5"),
		AvgComments: decimal.NewFromInt(15),
		HasAverages: true,
		Insight:     "Carousel posts average 120.0 likes.",
	})
	require.NoError(t, err)

	assert.Contains(t, html, `<div class="result">`)
	assert.Contains(t, html, "<h2>Post Type: CAROUSEL</h2>")
	assert.Contains(t, html, "<strong>Average Likes:</strong> 120.0")
	assert.Contains(t, html, "<strong>Average Shares:</strong> 30.5")
	assert.Contains(t, html, "<strong>Average Comments:</strong> 15.0")
	assert.Contains(t, html, "<strong>Insights:</strong> Carousel posts average 120.0 likes.")
	assert.NotContains(t, html, "AI Insights")
}

func TestFragmentInsightOnly(t *testing.T) {
	html, err := Fragment(&models.AnalysisResult{PostType: "Reels", Insight: "Post reels in the evening."})
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>Post Type: REELS</h2>")
	assert.Contains(t, html, "<strong>AI Insights:</strong> Post reels in the evening.")
	assert.NotContains(t, html, "Average")
}

func TestFragmentEscapes(t *testing.T) {
	html, err := Fragment(&models.AnalysisResult{
		PostType: "<script>x</script>",
		Insight:  `<img src=x onerror="alert(1)">`,
	})
	require.NoError(t, err)

	assert.False(t, strings.Contains(html, "<script>"), html)
	assert.False(t, strings.Contains(html, "<img"), html)
	assert.Contains(t, html, "&lt;SCRIPT&gt;")
}
