// Package workflow is a small client for a Langflow-style workflow execution API:
// start a flow run, and optionally follow its server-sent update stream.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"engagement-insights/utils"
)

// IOType is the declared kind of a run's input or output.
type IOType string

const (
	IOChat IOType = "chat"
	IOJSON IOType = "json"
	IOText IOType = "text"
	IOAny  IOType = "any"
)

// Valid reports whether t is a kind the API accepts.
func (t IOType) Valid() bool {
	switch t {
	case IOChat, IOJSON, IOText, IOAny:
		return true
	}
	return false
}

// ErrSessionInit is what RunFlow hands to OnError when the run could not be started.
var ErrSessionInit = errors.New("workflow: error initiating session")

// RunRequest is the JSON body of a run call.
type RunRequest struct {
	InputValue string         `json:"input_value"`
	InputType  IOType         `json:"input_type"`
	OutputType IOType         `json:"output_type"`
	Tweaks     map[string]any `json:"tweaks"`
}

// Client talks to one workflow API base URL with a fixed bearer token.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	streamClient *http.Client
	logger       *utils.Logger
	timeout      time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for run calls. Streams reuse its
// transport. hc itself is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each run call. Zero means no limit. Streams are never bounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *utils.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for baseURL. The token is sent unchanged on every request.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
		logger:     utils.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	c.streamClient = &http.Client{Transport: c.httpClient.Transport}
	return c
}

// StartRun posts req to /lf/{tenantID}/api/v1/run/{flowID}?stream={stream}
// and returns the decoded response document.
func (c *Client) StartRun(ctx context.Context, flowID, tenantID string, req RunRequest, stream bool) (Document, error) {
	if req.InputType == "" {
		req.InputType = IOChat
	}
	if req.OutputType == "" {
		req.OutputType = IOChat
	}
	if !req.InputType.Valid() {
		return nil, fmt.Errorf("%w: input %q", ErrInvalidIOType, req.InputType)
	}
	if !req.OutputType.Valid() {
		return nil, fmt.Errorf("%w: output %q", ErrInvalidIOType, req.OutputType)
	}
	if req.Tweaks == nil {
		req.Tweaks = map[string]any{}
	}

	endpoint := fmt.Sprintf("/lf/%s/api/v1/run/%s?stream=%t",
		url.PathEscape(tenantID), url.PathEscape(flowID), stream)
	return c.post(ctx, endpoint, req)
}

func (c *Client) post(ctx context.Context, endpoint string, body any) (Document, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("workflow: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("workflow: create request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("[workflow] Request error: %v", err)
		return nil, fmt.Errorf("workflow: POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("workflow: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(raw)}
		c.logger.Error("[workflow] Request error: %v", serr)
		return nil, serr
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("workflow: decode response: %w", err)
	}
	return doc, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}

// RunOptions describes one RunFlow call.
type RunOptions struct {
	FlowID   string
	TenantID string
	Request  RunRequest
	Stream   bool
	Handlers Handlers
}

// RunFlow starts a run and, when streaming was requested and the response
// carries a stream URL, follows it through HandleStream without waiting.
// Failures to start the run are logged and reported to Handlers.OnError as
// ErrSessionInit; RunFlow then returns a nil Document.
func (c *Client) RunFlow(ctx context.Context, opts RunOptions) (Document, *Stream) {
	doc, err := c.StartRun(ctx, opts.FlowID, opts.TenantID, opts.Request, opts.Stream)
	if err != nil {
		c.logger.Error("[workflow] Error running flow: %v", err)
		opts.Handlers.fail(ErrSessionInit)
		return nil, nil
	}
	c.logger.Debug("[workflow] Init response received for flow %s", opts.FlowID)

	if !opts.Stream {
		return doc, nil
	}
	streamURL, ok := doc.StreamURL()
	if !ok {
		return doc, nil
	}
	c.logger.Info("[workflow] Streaming from: %s", streamURL)
	return doc, c.HandleStream(ctx, streamURL, opts.Handlers)
}
