package workflow

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, s string) Document {
	t.Helper()
	var d Document
	require.NoError(t, json.Unmarshal([]byte(s), &d))
	return d
}

const langflowResponse = `{
  "session_id": "s1",
  "outputs": [{
    "inputs": {"input_value": "[]"},
    "outputs": [{
      "results": {"message": {"text": "from results"}},
      "artifacts": {"stream_url": "/api/v1/stream/abc"},
      "outputs": {"message": {"message": {"text": "Reels drive the most shares."}, "type": "object"}}
    }]
  }]
}`

func TestDocumentLookup(t *testing.T) {
	d := mustDoc(t, langflowResponse)

	v, ok := d.Lookup("outputs", 0, "inputs", "input_value")
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	_, ok = d.Lookup("outputs", 1)
	assert.False(t, ok)
	_, ok = d.Lookup("outputs", "0")
	assert.False(t, ok)
	_, ok = d.Lookup("session_id", "x")
	assert.False(t, ok)

	s, ok := d.String("session_id")
	assert.True(t, ok)
	assert.Equal(t, "s1", s)

	_, ok = d.String("outputs")
	assert.False(t, ok)
}

func TestDocumentStreamURL(t *testing.T) {
	u, ok := mustDoc(t, langflowResponse).StreamURL()
	assert.True(t, ok)
	assert.Equal(t, "/api/v1/stream/abc", u)

	_, ok = mustDoc(t, `{"outputs":[{"outputs":[{"artifacts":{"stream_url":""}}]}]}`).StreamURL()
	assert.False(t, ok)

	_, ok = mustDoc(t, `{"outputs":[]}`).StreamURL()
	assert.False(t, ok)
}

func TestDocumentMessageText(t *testing.T) {
	text, err := mustDoc(t, langflowResponse).MessageText()
	require.NoError(t, err)
	assert.Equal(t, "Reels drive the most shares.", text)

	text, err = mustDoc(t, `{"outputs":[{"outputs":[{"results":{"message":{"text":"fallback"}}}]}]}`).MessageText()
	require.NoError(t, err)
	assert.Equal(t, "fallback", text)
}

func TestDocumentMessageTextUnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no outputs", `{}`, "missing outputs"},
		{"empty outputs", `{"outputs":[]}`, "missing outputs[0]"},
		{"outputs not array", `{"outputs":{}}`, "outputs is not an array"},
		{"text not string", `{"outputs":[{"outputs":[{"outputs":{"message":{"message":{"text":7}}}}]}]}`, "not a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mustDoc(t, tt.doc).MessageText()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedShape))
			assert.True(t, strings.Contains(err.Error(), tt.want), "error %q should mention %q", err, tt.want)
		})
	}
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "document", formatPath(nil))
	assert.Equal(t, "outputs[0].outputs[0].artifacts", formatPath([]any{"outputs", 0, "outputs", 0, "artifacts"}))
}
