package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"engagement-insights/models"
	"engagement-insights/services"
)

// LinePrompter reads answers one line at a time. End of input counts as a cancelled prompt.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
	eof bool
	err error
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Prompt(ctx context.Context, message string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if p.err != nil {
		return "", false, p.err
	}
	fmt.Fprintf(p.out, "%s\n> ", message)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		p.eof = true
		p.err = err
		return "", false, err
	}
	line = strings.TrimRight(line, "\r\n")
	if errors.Is(err, io.EOF) {
		p.eof = true
		if line == "" {
			return "", false, nil
		}
	}
	return line, true, nil
}

// Exhausted reports whether the input has ended or failed. A failed input
// stays failed; Err returns the read error.
func (p *LinePrompter) Exhausted() bool { return p.eof }

func (p *LinePrompter) Err() error { return p.err }

// WriterAlerter prints advisories in yellow.
type WriterAlerter struct {
	out io.Writer
}

func NewWriterAlerter(out io.Writer) *WriterAlerter {
	return &WriterAlerter{out: out}
}

func (a *WriterAlerter) Alert(message string) {
	fmt.Fprintf(a.out, "\033[1;33m⚠  %s\033[0m\n", message)
}

// TerminalRegion prints each result as a report; the last one printed is the current content.
type TerminalRegion struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminalRegion(out io.Writer) *TerminalRegion {
	return &TerminalRegion{out: out}
}

func (r *TerminalRegion) Replace(result *models.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	services.PrintReport(r.out, result)
	return nil
}

// ClickSource is a Control fed programmatically.
type ClickSource struct {
	ch   chan struct{}
	once sync.Once
}

// NewClickSource creates a ClickSource that buffers up to n pending clicks.
func NewClickSource(n int) *ClickSource {
	if n < 0 {
		n = 0
	}
	return &ClickSource{ch: make(chan struct{}, n)}
}

// Clicks makes a ClickSource holding n clicks, already closed.
func Clicks(n int) *ClickSource {
	s := NewClickSource(n)
	for i := 0; i < n; i++ {
		s.Click()
	}
	s.Close()
	return s
}

// Click emits one click; it blocks while the buffer is full.
func (s *ClickSource) Click() { s.ch <- struct{}{} }

// Close ends the click stream. Safe to call twice.
func (s *ClickSource) Close() { s.once.Do(func() { close(s.ch) }) }

func (s *ClickSource) Clicks() <-chan struct{} { return s.ch }
