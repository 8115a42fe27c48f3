package mcpserver

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-launch/internal/cliagent"
	"mcp-launch/internal/policy"
)

func TestParseSandbox(t *testing.T) {
	assert.Equal(t, policy.ReadOnly, parseSandbox(""))
	assert.Equal(t, policy.ReadOnly, parseSandbox("read-only"))
	assert.Equal(t, policy.WorkspaceWrite, parseSandbox("workspace-write"))
	assert.Equal(t, policy.DangerFullAccess, parseSandbox("danger-full-access"))
}

func TestRenderCodexResultSuccessEnvelope(t *testing.T) {
	res, _, err := renderCodexResult(cliagent.CodexResult{
		Success:       true,
		SessionID:     "s1",
		AgentMessages: "hi",
	}, false, "")
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, `"SESSION_ID":"s1"`)
	assert.Contains(t, text, `"agent_messages":"hi"`)
	assert.NotContains(t, text, "all_messages")
}

func TestRenderCodexResultIncludesAllMessagesWhenRequested(t *testing.T) {
	res, _, err := renderCodexResult(cliagent.CodexResult{
		Success:       true,
		SessionID:     "s1",
		AllMessages:   []map[string]any{{"thread_id": "s1"}},
	}, true, "")
	require.NoError(t, err)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "all_messages")
}

func TestRenderCodexResultFailureAppendsWarnings(t *testing.T) {
	_, _, err := renderCodexResult(cliagent.CodexResult{
		Success: false,
		Error:   "boom",
	}, false, "danger-full-access downgraded to read-only")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "Warnings: danger-full-access downgraded to read-only")
}

func TestSplitWarnings(t *testing.T) {
	assert.Nil(t, splitWarnings(""))
	assert.Equal(t, []string{"w"}, splitWarnings("w"))
}
