package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"engagement-insights/models"
	"engagement-insights/utils"
)

// ErrNoRecords is returned when there is nothing to average.
var ErrNoRecords = errors.New("insights: no engagement records")

const insightTemplate = "%s posts average %s likes, %s shares and %s comments per post."

// InsightService computes engagement averages locally.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate averages likes, shares and comments over records, each rounded
// half away from zero to one decimal place.
func (s *InsightService) Generate(records []models.EngagementRecord) (*models.AnalysisResult, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	var likes, shares, comments int64
	for _, r := range records {
		likes += int64(r.Likes)
		shares += int64(r.Shares)
		comments += int64(r.Comments)
	}

	n := int64(len(records))
	report := &models.AnalysisResult{
		PostType:    string(records[0].PostType),
		AvgLikes:    average(likes, n),
		AvgShares:   average(shares, n),
		AvgComments: average(comments, n),
		HasAverages: true,
	}
	report.Insight = fmt.Sprintf(insightTemplate,
		records[0].PostType.Title(),
		FormatAverage(report.AvgLikes),
		FormatAverage(report.AvgShares),
		FormatAverage(report.AvgComments))

	s.logger.Debug("[insights] %d %s records → likes=%s shares=%s comments=%s",
		n, records[0].PostType,
		FormatAverage(report.AvgLikes), FormatAverage(report.AvgShares), FormatAverage(report.AvgComments))
	return report, nil
}

// Analyze is Generate labelled with the post type as the user typed it.
func (s *InsightService) Analyze(_ context.Context, postType string, records []models.EngagementRecord) (*models.AnalysisResult, error) {
	report, err := s.Generate(records)
	if err != nil {
		return nil, err
	}
	report.PostType = postType
	return report, nil
}

// FormatAverage always prints one fractional digit ("120.0").
func FormatAverage(d decimal.Decimal) string {
	return d.StringFixed(1)
}

func average(sum, n int64) decimal.Decimal {
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(n)).Round(1)
}

// PrintReport writes an ANSI-coloured summary of r for terminal output.
func PrintReport(w io.Writer, r *models.AnalysisResult) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 POST TYPE: %s\033[0m\n", strings.ToUpper(r.PostType))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	if r.HasAverages {
		fmt.Fprintf(w, "\033[1;33m  Average Engagement (per post)\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  Likes    : \033[1;32m%s\033[0m\n", FormatAverage(r.AvgLikes))
		fmt.Fprintf(w, "  Shares   : \033[1;32m%s\033[0m\n", FormatAverage(r.AvgShares))
		fmt.Fprintf(w, "  Comments : \033[1;32m%s\033[0m\n", FormatAverage(r.AvgComments))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Insights\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  %s\n", r.Insight)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}
