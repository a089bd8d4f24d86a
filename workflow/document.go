package workflow

import (
	"fmt"
	"strings"
)

// Document is an untyped JSON object as exchanged with the workflow API.
type Document map[string]any

// Lookup walks path through nested objects (string steps) and arrays (int steps).
func (d Document) Lookup(path ...any) (any, bool) {
	v, err := d.walk(path)
	return v, err == nil
}

// String returns the string at path, or false when it is missing or not a string.
func (d Document) String(path ...any) (string, bool) {
	v, ok := d.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StreamURL returns outputs[0].outputs[0].artifacts.stream_url when present and non-empty.
func (d Document) StreamURL() (string, bool) {
	s, ok := d.String("outputs", 0, "outputs", 0, "artifacts", "stream_url")
	return s, ok && s != ""
}

var messageTextPaths = [][]any{
	{"outputs", 0, "outputs", 0, "outputs", "message", "message", "text"},
	{"outputs", 0, "outputs", 0, "results", "message", "text"},
}

// MessageText extracts the flow's final chat message. The errors wrap
// ErrUnexpectedShape and name the first step that could not be followed.
func (d Document) MessageText() (string, error) {
	var firstErr error
	for _, path := range messageTextPaths {
		v, err := d.walk(path)
		if err == nil {
			if s, ok := v.(string); ok {
				return s, nil
			}
			err = fmt.Errorf("%w: %s is %T, not a string", ErrUnexpectedShape, formatPath(path), v)
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}

func (d Document) walk(path []any) (any, error) {
	var cur any = map[string]any(d)
	for i, step := range path {
		switch s := step.(type) {
		case string:
			obj, ok := asObject(cur)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not an object", ErrUnexpectedShape, formatPath(path[:i]))
			}
			next, ok := obj[s]
			if !ok || next == nil {
				return nil, fmt.Errorf("%w: missing %s", ErrUnexpectedShape, formatPath(path[:i+1]))
			}
			cur = next
		case int:
			arr, ok := cur.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not an array", ErrUnexpectedShape, formatPath(path[:i]))
			}
			if s < 0 || s >= len(arr) {
				return nil, fmt.Errorf("%w: missing %s", ErrUnexpectedShape, formatPath(path[:i+1]))
			}
			cur = arr[s]
		default:
			return nil, fmt.Errorf("workflow: unsupported path step %T", step)
		}
	}
	return cur, nil
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case Document:
		return o, true
	}
	return nil, false
}

func formatPath(path []any) string {
	if len(path) == 0 {
		return "document"
	}
	var b strings.Builder
	for _, step := range path {
		switch s := step.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprintf(&b, "%v", s)
		}
	}
	return b.String()
}
