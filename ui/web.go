package ui

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"engagement-insights/models"
	"engagement-insights/utils"
)

// Element ids the page script binds to.
const (
	ControlID = "ctaButton"
	RegionID  = "resultsSection"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Post Engagement Insights</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 3rem auto; }
.result { border: 1px solid #ddd; border-radius: .5rem; padding: 1rem; margin-top: 1.5rem; }
</style>
</head>
<body>
<h1>Post Engagement Insights</h1>
<button id="{{.ControlID}}">Analyze a post type</button>
<section id="{{.RegionID}}"></section>
<script>
const button = document.getElementById({{.ControlID}});
const results = document.getElementById({{.RegionID}});
button.addEventListener('click', async () => {
  const answer = prompt({{.Prompt}});
  const body = answer === null ? {} : { postType: answer };
  try {
    const resp = await fetch('/api/click', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(body),
    });
    const out = await resp.json();
    (out.alerts || []).forEach((a) => alert(a));
    if (out.html) { results.innerHTML = out.html; }
  } catch (err) {
    console.error('Error during analysis:', err);
    alert({{.Failure}});
  }
});
</script>
</body>
</html>
`))

// clickRequest carries the prompt answer; a missing postType is a cancelled prompt.
type clickRequest struct {
	PostType *string `json:"postType"`
}

type clickResponse struct {
	State  string   `json:"state"`
	Alerts []string `json:"alerts"`
	HTML   string   `json:"html,omitempty"`
}

// answerPrompter replays the answer the browser already collected.
type answerPrompter struct {
	answer *string
}

func (p answerPrompter) Prompt(context.Context, string) (string, bool, error) {
	if p.answer == nil {
		return "", false, nil
	}
	return *p.answer, true, nil
}

type alertRecorder struct {
	mu     sync.Mutex
	alerts []string
}

func (a *alertRecorder) Alert(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, message)
}

func (a *alertRecorder) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.alerts...)
}

// fragmentRegion keeps the HTML of the last result it was given.
type fragmentRegion struct {
	html string
}

func (r *fragmentRegion) Replace(result *models.AnalysisResult) error {
	html, err := Fragment(result)
	if err != nil {
		return err
	}
	r.html = html
	return nil
}

// NewRouter builds the web surface. All requests share deps.Gate, so a click
// arriving while another is being processed is refused with 409.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Gate == nil {
		deps.Gate = utils.NewRunGate()
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}

	router := gin.New()
	router.Use(requestLogger(deps.Logger), gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		err := pageTmpl.Execute(c.Writer, map[string]string{
			"ControlID": ControlID,
			"RegionID":  RegionID,
			"Prompt":    PromptMessage,
			"Failure":   MsgFailure,
		})
		if err != nil {
			deps.Logger.Error("[web] render page: %v", err)
		}
	})

	router.POST("/api/click", func(c *gin.Context) {
		var req clickRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		alerts := &alertRecorder{}
		region := &fragmentRegion{}
		ctrl := NewController(deps, Surface{
			Prompter: answerPrompter{answer: req.PostType},
			Alerter:  alerts,
			Region:   region,
		})

		state, err := ctrl.HandleClick(c.Request.Context())
		status := http.StatusOK
		if errors.Is(err, ErrRunInFlight) {
			status = http.StatusConflict
		}
		c.JSON(status, clickResponse{State: state.String(), Alerts: alerts.all(), HTML: region.html})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "busy": deps.Gate.Current() != ""})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	return router
}

func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[web] %s %s → %d (%v)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
