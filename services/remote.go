package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"engagement-insights/metrics"
	"engagement-insights/models"
	"engagement-insights/utils"
	"engagement-insights/workflow"
)

// RemoteConfig names the flow a RemoteAnalyzer runs.
type RemoteConfig struct {
	FlowID   string
	TenantID string
	Stream   bool
	Tweaks   map[string]any
}

// RemoteAnalyzer delegates analysis to a workflow run and reports the flow's
// final message as the insight.
type RemoteAnalyzer struct {
	client  *workflow.Client
	cfg     RemoteConfig
	logger  *utils.Logger
	metrics *metrics.Metrics
}

// NewRemoteAnalyzer creates a RemoteAnalyzer. m may be nil.
func NewRemoteAnalyzer(client *workflow.Client, cfg RemoteConfig, logger *utils.Logger, m *metrics.Metrics) *RemoteAnalyzer {
	return &RemoteAnalyzer{client: client, cfg: cfg, logger: logger, metrics: m}
}

// Analyze sends records as a JSON document to the flow.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, postType string, records []models.EngagementRecord) (*models.AnalysisResult, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	input, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("remote analysis: marshal records: %w", err)
	}

	// the stream outlives the click that started it
	doc, _ := a.client.RunFlow(context.WithoutCancel(ctx), workflow.RunOptions{
		FlowID:   a.cfg.FlowID,
		TenantID: a.cfg.TenantID,
		Stream:   a.cfg.Stream,
		Request: workflow.RunRequest{
			InputValue: string(input),
			InputType:  workflow.IOJSON,
			OutputType: workflow.IOJSON,
			Tweaks:     a.cfg.Tweaks,
		},
		Handlers: a.streamHandlers(),
	})
	if doc == nil {
		a.metrics.WorkflowCall(false)
		return nil, fmt.Errorf("remote analysis: %w", workflow.ErrSessionInit)
	}

	text, err := doc.MessageText()
	if err != nil {
		a.metrics.WorkflowCall(false)
		return nil, fmt.Errorf("remote analysis: %w", err)
	}
	a.metrics.WorkflowCall(true)
	a.logger.Info("[remote] Final Output: %s", text)

	return &models.AnalysisResult{PostType: postType, Insight: text}, nil
}

func (a *RemoteAnalyzer) streamHandlers() workflow.Handlers {
	return workflow.Handlers{
		OnUpdate: func(ev workflow.Event) {
			a.metrics.StreamEvent("update")
			chunk, _ := ev.Data.String("chunk")
			a.logger.Debug("[remote] Received: %s", chunk)
		},
		OnClose: func(reason string) {
			a.metrics.StreamEvent("closed")
			a.logger.Info("[remote] Stream Closed: %s", reason)
		},
		OnError: func(err error) {
			if errors.Is(err, workflow.ErrSessionInit) {
				return
			}
			a.metrics.StreamEvent("failed")
			a.logger.Warn("[remote] Stream Error: %v", err)
		},
	}
}
