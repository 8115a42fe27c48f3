package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeJSONRoundTrips(t *testing.T) {
	out := encodeJSON(map[string]any{"a": 1})
	assert.Equal(t, `{"a":1}`, out)
}

func TestEncodeJSONFallsBackOnUnencodable(t *testing.T) {
	out := encodeJSON(map[string]any{"a": func() {}})
	assert.Contains(t, out, "failed to serialize output")
}
