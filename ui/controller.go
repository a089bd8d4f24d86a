// Package ui wires a click source to the engagement pipeline and renders the
// outcome into a results region. Surfaces (terminal, web) supply the concrete
// prompt, alert and region implementations.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"engagement-insights/metrics"
	"engagement-insights/models"
	"engagement-insights/services"
	"engagement-insights/storage"
	"engagement-insights/utils"
)

// User-facing messages.
const (
	PromptMessage  = `Enter the type of post: "carousel", "reels", or "static"`
	MsgNoInput     = "No post type provided. Please try again."
	MsgNoData      = `No data found for that post type. Please try "carousel", "reels", or "static".`
	MsgFailure     = "An error occurred while processing the data."
	MsgRunInFlight = "An analysis is already running. Please wait for it to finish."
)

// ErrRunInFlight is returned by HandleClick when another run holds the gate.
var ErrRunInFlight = errors.New("ui: analysis already in flight")

// State of the controller between and during clicks.
type State int

const (
	Idle State = iota
	AwaitingInput
	Fetching
	Rendered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingInput:
		return "awaiting_input"
	case Fetching:
		return "fetching"
	case Rendered:
		return "rendered"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Prompter asks the user for a line of text. ok=false means the prompt was cancelled.
type Prompter interface {
	Prompt(ctx context.Context, message string) (answer string, ok bool, err error)
}

// Alerter shows an advisory to the user.
type Alerter interface {
	Alert(message string)
}

// Region is the render target whose content is replaced on every successful run.
type Region interface {
	Replace(result *models.AnalysisResult) error
}

// Control is a source of clicks. The channel is closed when the control goes away.
type Control interface {
	Clicks() <-chan struct{}
}

// Analyzer turns a batch of records into a result, remotely or locally.
type Analyzer interface {
	Analyze(ctx context.Context, postType string, records []models.EngagementRecord) (*models.AnalysisResult, error)
}

// Deps are the pipeline collaborators. Gate, Logger and Metrics are optional.
type Deps struct {
	Source   storage.EngagementSource
	Analyzer Analyzer
	Logger   *utils.Logger
	Gate     *utils.RunGate
	Metrics  *metrics.Metrics
}

// Surface is the set of handles the controller talks to the user through.
type Surface struct {
	Prompter Prompter
	Alerter  Alerter
	Region   Region
}

// Controller runs one click at a time through prompt → fetch → analyze → render.
type Controller struct {
	deps    Deps
	surface Surface

	mu    sync.Mutex
	state State
}

// NewController binds deps to a surface.
func NewController(deps Deps, surface Surface) *Controller {
	if deps.Gate == nil {
		deps.Gate = utils.NewRunGate()
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}
	return &Controller{deps: deps, surface: surface}
}

// State reports where the controller currently is.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run handles clicks from control in order until it closes or ctx ends.
func (c *Controller) Run(ctx context.Context, control Control) error {
	clicks := control.Clicks()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-clicks:
			if !ok {
				return nil
			}
			if _, err := c.HandleClick(ctx); err != nil && !errors.Is(err, ErrRunInFlight) {
				c.deps.Logger.Debug("[ui] click ended with error: %v", err)
			}
		}
	}
}

// HandleClick performs one run and returns the state it ended in. Advisory
// outcomes (no input, no data) return a nil error; failures have already been
// shown to the user as a generic alert when the error comes back.
func (c *Controller) HandleClick(ctx context.Context) (final State, err error) {
	runID, release, ok := c.deps.Gate.TryEnter()
	if !ok {
		c.deps.Metrics.ObserveRun(metrics.OutcomeBusy, 0)
		c.surface.Alerter.Alert(MsgRunInFlight)
		return c.State(), ErrRunInFlight
	}
	defer release()

	log := c.deps.Logger.With("run_id", runID)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			final, err = c.fail(log, start, fmt.Errorf("ui: panic during analysis: %v", p))
		}
	}()

	c.setState(AwaitingInput)
	answer, ok, err := c.surface.Prompter.Prompt(ctx, PromptMessage)
	if err != nil {
		return c.fail(log, start, fmt.Errorf("ui: prompt: %w", err))
	}
	label := strings.TrimSpace(answer)
	if !ok || label == "" {
		log.Info("[ui] No post type provided")
		return c.advise(start, MsgNoInput, metrics.OutcomeNoInput)
	}

	c.setState(Fetching)
	key := services.NormalisePostType(label)
	log.Info("[ui] Fetching engagement data for %q", key)

	records, found, err := c.deps.Source.Fetch(ctx, key)
	if err != nil {
		return c.fail(log, start, fmt.Errorf("ui: fetch %q: %w", key, err))
	}
	if !found || len(records) == 0 {
		log.Info("[ui] No data for %q", key)
		return c.advise(start, MsgNoData, metrics.OutcomeNoData)
	}

	result, err := c.deps.Analyzer.Analyze(ctx, label, records)
	if err != nil {
		return c.fail(log, start, fmt.Errorf("ui: analyze %q: %w", key, err))
	}
	if err := c.surface.Region.Replace(result); err != nil {
		return c.fail(log, start, fmt.Errorf("ui: render: %w", err))
	}

	c.setState(Rendered)
	c.deps.Metrics.ObserveRun(metrics.OutcomeRendered, time.Since(start))
	log.Info("[ui] Rendered %d %s records in %v", len(records), key, time.Since(start).Round(time.Millisecond))
	return Rendered, nil
}

func (c *Controller) advise(start time.Time, message, outcome string) (State, error) {
	c.surface.Alerter.Alert(message)
	c.setState(Idle)
	c.deps.Metrics.ObserveRun(outcome, time.Since(start))
	return Idle, nil
}

func (c *Controller) fail(log *utils.Logger, start time.Time, err error) (State, error) {
	log.Error("[ui] Error during analysis: %v", err)
	c.surface.Alerter.Alert(MsgFailure)
	c.setState(Idle)
	c.deps.Metrics.ObserveRun(metrics.OutcomeFailed, time.Since(start))
	return Idle, err
}
