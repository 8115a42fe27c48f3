package cliagent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonUnmarshalHelper(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

func TestProcessGeminiLineExtractsSessionAndAgentMessage(t *testing.T) {
	result := GeminiResult{Success: true}
	var data any
	_ = jsonUnmarshalHelper(`{"session_id":"s1","type":"message","role":"assistant","content":"hi there"}`, &data)
	processGeminiLine(data, &result, false)
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, "hi there", result.AgentMessages)
	assert.True(t, result.Success)
}

func TestProcessGeminiLineSkipsDeprecationWarning(t *testing.T) {
	result := GeminiResult{Success: true}
	var data any
	_ = jsonUnmarshalHelper(`{"type":"message","role":"assistant","content":"The --prompt (-p) flag has been deprecated"}`, &data)
	processGeminiLine(data, &result, false)
	assert.Equal(t, "", result.AgentMessages)
}

func TestProcessGeminiLineDetectsCaseInsensitiveErrorType(t *testing.T) {
	result := GeminiResult{Success: true}
	var data any
	_ = jsonUnmarshalHelper(`{"type":"TASK_FAILED","message":"bad"}`, &data)
	processGeminiLine(data, &result, false)
	assert.False(t, result.Success)
	assert.Equal(t, "gemini error: bad", result.Error)
}

func TestProcessGeminiLineDetectsErrorObjectPresence(t *testing.T) {
	result := GeminiResult{Success: true}
	var data any
	_ = jsonUnmarshalHelper(`{"type":"update","error":{"message":"oops"}}`, &data)
	processGeminiLine(data, &result, false)
	assert.False(t, result.Success)
	assert.Equal(t, "gemini error: oops", result.Error)
}

func TestEnforceGeminiRequiredFieldsRequiresSessionID(t *testing.T) {
	result := enforceGeminiRequiredFields(GeminiResult{Success: true, AgentMessages: "msg"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Failed to get `SESSION_ID`")
}

func TestEnforceGeminiRequiredFieldsRequiresAgentMessagesWhenNotReturningAll(t *testing.T) {
	result := enforceGeminiRequiredFields(GeminiResult{Success: true, SessionID: "s"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Failed to get `agent_messages`")
}

func TestEnforceGeminiRequiredFieldsAllowsEmptyAgentMessagesWithAllMessages(t *testing.T) {
	result := enforceGeminiRequiredFields(GeminiResult{
		Success:           true,
		SessionID:         "s",
		ReturnAllMessages: true,
		AllMessages:       []any{map[string]any{"type": "tool_use"}},
	})
	assert.True(t, result.Success)
	assert.Equal(t, "", result.Error)
}

func TestBuildGeminiCommandUsesForceModelEnv(t *testing.T) {
	t.Setenv("GEMINI_FORCE_MODEL", "gemini-2.0-flash")
	t.Setenv("GEMINI_BIN", "")
	_, args := buildGeminiCommand(GeminiOptions{Prompt: "hi"})
	require.Contains(t, args, "--model")
	assert.Contains(t, args, "gemini-2.0-flash")
}

func TestBuildGeminiCommandPrefersExplicitModel(t *testing.T) {
	t.Setenv("GEMINI_FORCE_MODEL", "gemini-2.0-flash")
	t.Setenv("GEMINI_BIN", "")
	_, args := buildGeminiCommand(GeminiOptions{Prompt: "hi", Model: "gemini-pro"})
	assert.Contains(t, args, "gemini-pro")
	assert.NotContains(t, args, "gemini-2.0-flash")
}

func TestGetDefaultGeminiTimeoutValidatesRange(t *testing.T) {
	t.Setenv(envDefaultTimeout, "300")
	assert.Equal(t, uint64(300), getDefaultGeminiTimeout())

	t.Setenv(envDefaultTimeout, "0")
	assert.Equal(t, uint64(600), getDefaultGeminiTimeout())

	t.Setenv(envDefaultTimeout, "invalid")
	assert.Equal(t, uint64(600), getDefaultGeminiTimeout())

	t.Setenv(envDefaultTimeout, "9999")
	assert.Equal(t, uint64(600), getDefaultGeminiTimeout())
}
