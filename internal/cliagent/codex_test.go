package cliagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCodexLineExtractsThreadIDAndAgentMessage(t *testing.T) {
	result := CodexResult{Success: true}
	size := 0
	failed := processCodexLine(`{"thread_id":"abc123","item":{"type":"agent_message","text":"hello"}}`, &result, false, 10000, &size)
	require.False(t, failed)
	assert.Equal(t, "abc123", result.SessionID)
	assert.Equal(t, "hello", result.AgentMessages)
	assert.True(t, result.Success)
}

func TestProcessCodexLineReportsParseFailure(t *testing.T) {
	result := CodexResult{Success: true}
	size := 0
	failed := processCodexLine("not-json", &result, false, 10000, &size)
	assert.True(t, failed)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "JSON parse error")
}

func TestProcessCodexLineDetectsFailType(t *testing.T) {
	result := CodexResult{Success: true}
	size := 0
	processCodexLine(`{"type":"task_failed","error":{"message":"boom"}}`, &result, false, 10000, &size)
	assert.False(t, result.Success)
	assert.Equal(t, "codex error: boom", result.Error)
}

func TestProcessCodexLineCollectsAllMessagesUpToLimit(t *testing.T) {
	result := CodexResult{Success: true}
	size := 0
	processCodexLine(`{"thread_id":"x"}`, &result, true, 1, &size)
	processCodexLine(`{"thread_id":"x"}`, &result, true, 1, &size)
	assert.Len(t, result.AllMessages, 1)
	assert.True(t, result.AllMessagesTruncated)
}

func TestEnforceCodexRequiredFieldsRequiresSessionID(t *testing.T) {
	result := enforceCodexRequiredFields(CodexResult{Success: true, AgentMessages: "msg"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Failed to get SESSION_ID")
}

func TestEnforceCodexRequiredFieldsWarnsOnMissingAgentMessages(t *testing.T) {
	result := enforceCodexRequiredFields(CodexResult{Success: true, SessionID: "s"})
	assert.True(t, result.Success)
	assert.Contains(t, result.Warnings, "No agent_messages")
}

func TestEnforceCodexRequiredFieldsSkipsSessionIDErrorWhenErrorExists(t *testing.T) {
	result := enforceCodexRequiredFields(CodexResult{
		Success: false,
		Error:   "Output line exceeded 1048576 byte limit and was truncated, cannot parse JSON.",
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "truncated")
	assert.NotContains(t, result.Error, "SESSION_ID")
	assert.Contains(t, result.Warnings, "No agent_messages")
}

func TestNormalizeTimeoutSecs(t *testing.T) {
	assert.Equal(t, uint64(600), normalizeTimeoutSecs(0))
	assert.Equal(t, uint64(3600), normalizeTimeoutSecs(9999))
	assert.Equal(t, uint64(120), normalizeTimeoutSecs(120))
}
