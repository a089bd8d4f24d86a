package ui

import (
	"bytes"
	"html/template"
	"strings"

	"engagement-insights/models"
	"engagement-insights/services"
)

var fragmentTmpl = template.Must(template.New("result").Parse(`
<div class="result">
    <h2>Post Type: {{.PostType}}</h2>
{{- if .HasAverages}}
    <p><strong>Average Likes:</strong> {{.AvgLikes}}</p>
    <p><strong>Average Shares:</strong> {{.AvgShares}}</p>
    <p><strong>Average Comments:</strong> {{.AvgComments}}</p>
    <p><strong>Insights:</strong> {{.Insight}}</p>
{{- else}}
    <p><strong>AI Insights:</strong> {{.Insight}}</p>
{{- end}}
</div>
`))

type fragmentView struct {
	PostType    string
	HasAverages bool
	AvgLikes    string
	AvgShares   string
	AvgComments string
	Insight     string
}

// Fragment renders result as the HTML that replaces the results region.
// All interpolated text is escaped.
func Fragment(result *models.AnalysisResult) (string, error) {
	view := fragmentView{
		PostType:    strings.ToUpper(result.PostType),
		HasAverages: result.HasAverages,
		Insight:     result.Insight,
	}
	if result.HasAverages {
		view.AvgLikes = services.FormatAverage(result.AvgLikes)
		view.AvgShares = services.FormatAverage(result.AvgShares)
		view.AvgComments = services.FormatAverage(result.AvgComments)
	}

	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
