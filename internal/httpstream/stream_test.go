package httpstream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreamingResponseAccumulatesDeltas(t *testing.T) {
	body := strings.NewReader("data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"data: [DONE]\n")

	content, err := parseStreamingResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestParseStreamingResponseEndsOnFinishReason(t *testing.T) {
	body := strings.NewReader("data: {\"choices\":[{\"delta\":{\"content\":\"ok\"},\"finish_reason\":\"stop\"}]}\n")

	content, err := parseStreamingResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "ok", content)
}

func TestParseStreamingResponseFallsBackToNonStreamingParse(t *testing.T) {
	body := strings.NewReader(`{"choices":[{"message":{"content":"fallback"}}]}`)

	content, err := parseStreamingResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "fallback", content)
}

func TestParseStreamingResponseIgnoresNonDataLines(t *testing.T) {
	body := strings.NewReader(": comment line\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n" +
		"data: [DONE]\n")

	content, err := parseStreamingResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "x", content)
}
