package workflow

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// State is the lifecycle position of a Stream.
type State int

const (
	StateOpen State = iota
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Reasons reported for a closed stream.
const (
	ReasonServerClosed = "Stream closed"
	ReasonCancelled    = "Stream cancelled"
)

// Event is one inbound server-sent message.
type Event struct {
	// Name is the SSE event field, "message" when the server sent none.
	Name string
	// Data is the decoded payload when it is a JSON object.
	Data Document
	// Raw is the payload exactly as received.
	Raw json.RawMessage
}

// Stream follows a server-sent event endpoint. Updates arrive on Events,
// which is closed once the stream reaches a terminal state; Done is closed
// right after. The consumer must drain Events or call Close.
type Stream struct {
	url    string
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	reason string
	err    error

	closeOnce sync.Once
}

// OpenStream connects to streamURL in the background. Relative URLs are
// resolved against the client's base URL. Connection and status failures
// surface as StateFailed rather than as an error here.
func (c *Client) OpenStream(ctx context.Context, streamURL string) (*Stream, error) {
	full, err := c.resolve(streamURL)
	if err != nil {
		return nil, fmt.Errorf("workflow: stream url %q: %w", streamURL, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("workflow: create stream request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	s := &Stream{
		url:    full,
		events: make(chan Event),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go s.run(ctx, c, req)
	return s, nil
}

// Events delivers one Event per inbound message.
func (s *Stream) Events() <-chan Event { return s.events }

// Done is closed once the stream is closed or failed and the connection released.
func (s *Stream) Done() <-chan struct{} { return s.done }

// State reports the current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the failure cause once the stream is StateFailed, nil otherwise.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Reason says why a StateClosed stream closed.
func (s *Stream) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// URL is the resolved endpoint.
func (s *Stream) URL() string { return s.url }

// Close cancels the stream and waits for the connection to be released.
// It is safe to call more than once and from any goroutine.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.finish(StateClosed, ReasonCancelled, nil)
		s.cancel()
	})
	<-s.done
	return nil
}

// finish records the terminal state. Only the first call has an effect.
func (s *Stream) finish(state State, reason string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return false
	}
	s.state = state
	s.reason = reason
	s.err = err
	return true
}

func (s *Stream) run(ctx context.Context, c *Client, req *http.Request) {
	defer close(s.done)
	defer close(s.events)
	defer s.cancel()

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			s.finish(StateClosed, ReasonCancelled, nil)
			return
		}
		s.finish(StateFailed, "", fmt.Errorf("workflow: connect stream: %w", err))
		c.logger.Error("[workflow] Stream Error: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		serr := &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(body)}
		s.finish(StateFailed, "", serr)
		c.logger.Error("[workflow] Stream Error: %v", serr)
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	eventName := ""
	var data strings.Builder
	hasData := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if eventName == "close" {
				s.finish(StateClosed, ReasonServerClosed, nil)
				c.logger.Debug("[workflow] Stream closed by server: %s", s.url)
				return
			}
			if hasData {
				if !s.dispatch(ctx, c, eventName, data.String()) {
					s.finish(StateClosed, ReasonCancelled, nil)
					return
				}
			}
			eventName = ""
			data.Reset()
			hasData = false
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			eventName = value
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		}
	}

	if ctx.Err() != nil {
		s.finish(StateClosed, ReasonCancelled, nil)
		return
	}
	if eventName == "close" {
		s.finish(StateClosed, ReasonServerClosed, nil)
		return
	}
	err = scanner.Err()
	if err == nil {
		err = ErrStreamEnded
	}
	s.finish(StateFailed, "", fmt.Errorf("workflow: read stream: %w", err))
	c.logger.Error("[workflow] Stream Error: %v", err)
}

// dispatch delivers one message. It returns false once the stream was cancelled.
func (s *Stream) dispatch(ctx context.Context, c *Client, name, data string) bool {
	if name == "" {
		name = "message"
	}
	raw := json.RawMessage(data)
	if !json.Valid(raw) {
		c.logger.Warn("[workflow] Skipping non-JSON %s event: %.80q", name, data)
		return true
	}
	ev := Event{Name: name, Raw: raw}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err == nil {
		ev.Data = doc
	}

	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// splitField parses "field: value", dropping one optional space after the colon.
// Comment lines come back with an empty field.
func splitField(line string) (string, string) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return line, ""
	}
	if i == 0 {
		return "", ""
	}
	return line[:i], strings.TrimPrefix(line[i+1:], " ")
}

func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}

// Handlers are the callbacks used by HandleStream and RunFlow. Any may be nil.
type Handlers struct {
	OnUpdate func(Event)
	OnClose  func(reason string)
	OnError  func(err error)
}

func (h Handlers) fail(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

// HandleStream opens streamURL and dispatches to h from a background
// goroutine: OnUpdate per message, then exactly one of OnClose or OnError.
// The returned Stream may be closed early; it is nil if the URL was unusable,
// in which case OnError has already been called.
func (c *Client) HandleStream(ctx context.Context, streamURL string, h Handlers) *Stream {
	s, err := c.OpenStream(ctx, streamURL)
	if err != nil {
		c.logger.Error("[workflow] Stream Error: %v", err)
		h.fail(err)
		return nil
	}

	go func() {
		for ev := range s.Events() {
			if h.OnUpdate != nil {
				h.OnUpdate(ev)
			}
		}
		<-s.Done()

		switch s.State() {
		case StateClosed:
			if h.OnClose != nil {
				h.OnClose(s.Reason())
			}
		case StateFailed:
			h.fail(s.Err())
		}
	}()
	return s
}
