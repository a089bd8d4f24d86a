package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidIOType is returned for an input/output kind the API does not know.
	ErrInvalidIOType = errors.New("workflow: invalid input/output type")
	// ErrUnexpectedShape is returned when a response document lacks an expected field.
	ErrUnexpectedShape = errors.New("workflow: unexpected response shape")
	// ErrStreamEnded is returned when the event stream ends without a close event.
	ErrStreamEnded = errors.New("workflow: stream ended without close event")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s - %s", e.Code, statusText(e.Code, e.Status), e.Body)
}

// statusText strips the leading code from http.Response.Status ("404 Not Found" → "Not Found").
func statusText(code int, status string) string {
	return strings.TrimSpace(strings.TrimPrefix(status, fmt.Sprintf("%d", code)))
}
