package mcpserver

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-launch/internal/cliagent"
)

func TestRenderGeminiResultSuccess(t *testing.T) {
	res, _, err := renderGeminiResult(cliagent.GeminiResult{
		Success:       true,
		SessionID:     "s1",
		AgentMessages: "hi",
	}, false)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "SESSION_ID: s1")
	assert.Contains(t, text, "agent_messages: hi")
}

func TestRenderGeminiResultFailureIncludesCapturedEvents(t *testing.T) {
	_, _, err := renderGeminiResult(cliagent.GeminiResult{
		Success:     false,
		Error:       "boom",
		AllMessages: []any{map[string]any{"type": "x"}},
	}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "Captured 1 events before failure")
}

func TestRenderGeminiResultFailureDefaultsUnknownError(t *testing.T) {
	_, _, err := renderGeminiResult(cliagent.GeminiResult{Success: false}, false)
	require.Error(t, err)
	assert.Equal(t, "Unknown error", err.Error())
}
