package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-launch/internal/cliagent"
	"mcp-launch/internal/mcperr"
	"mcp-launch/internal/policy"
)

// geminiArgs mirrors server.rs's GeminiArgs: PROMPT/SESSION_ID are
// preserved upper-case per spec.md §6, the rest follow Go naming.
type geminiArgs struct {
	Prompt            string `json:"PROMPT" jsonschema:"Instruction for the task to send to gemini"`
	Sandbox           bool   `json:"sandbox,omitempty" jsonschema:"Run in sandbox mode. Defaults to false"`
	SessionID         string `json:"SESSION_ID,omitempty" jsonschema:"Resume the specified session of the gemini. If not provided or empty, starts a new session"`
	ReturnAllMessages bool   `json:"return_all_messages,omitempty" jsonschema:"Return all messages (reasoning, tool calls, etc.) from the gemini session"`
	Model             string `json:"model,omitempty" jsonschema:"The model to use for the gemini session. Defaults to GEMINI_FORCE_MODEL or the Gemini CLI default"`
	TimeoutSecs       uint64 `json:"timeout_secs,omitempty" jsonschema:"Timeout in seconds for gemini execution (1-3600). Defaults to GEMINI_DEFAULT_TIMEOUT or 600"`
}

func registerGemini(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "gemini",
		Description: "Invokes the Gemini CLI to execute AI-driven tasks, returning structured JSON events and a session identifier for conversation continuity.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args geminiArgs) (*mcp.CallToolResult, any, error) {
		if !deps.Caps.GeminiAvailable {
			return nil, nil, mcperr.Unavailablef("Gemini CLI not found in PATH. Install gemini CLI or set GEMINI_BIN env var.")
		}
		if strings.TrimSpace(args.Prompt) == "" {
			return nil, nil, mcperr.Invalidf("PROMPT is required and must be a non-empty, non-whitespace string")
		}
		if args.Model != "" && strings.TrimSpace(args.Model) == "" {
			return nil, nil, mcperr.Invalidf("Model overrides must be explicitly requested as a non-empty, non-whitespace string")
		}
		if args.TimeoutSecs != 0 && (args.TimeoutSecs < policy.MinTimeoutSecs || args.TimeoutSecs > policy.MaxTimeoutSecs) {
			return nil, nil, mcperr.Invalidf("timeout_secs must be between %d and %d seconds", policy.MinTimeoutSecs, policy.MaxTimeoutSecs)
		}

		deps.negotiateRoots(ctx, req.Session)
		includeDirectories := deps.Roots.Get()

		result, err := cliagent.RunGemini(ctx, cliagent.GeminiOptions{
			Prompt:             args.Prompt,
			Sandbox:            args.Sandbox,
			SessionID:          args.SessionID,
			ReturnAllMessages:  args.ReturnAllMessages,
			Model:              args.Model,
			TimeoutSecs:        args.TimeoutSecs,
			IncludeDirectories: includeDirectories,
		})
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.Internal, "Failed to execute gemini", err)
		}

		return renderGeminiResult(result, args.ReturnAllMessages)
	})
}

// renderGeminiResult turns a cliagent.GeminiResult into the tool's
// success/error response, matching server.rs's gemini handler's text
// rendering and its "captured N events before failure" error suffix.
func renderGeminiResult(result cliagent.GeminiResult, returnAllMessages bool) (*mcp.CallToolResult, any, error) {
	if !result.Success {
		errMsg := result.Error
		if errMsg == "" {
			errMsg = "Unknown error"
		}
		if returnAllMessages && len(result.AllMessages) > 0 {
			errMsg += fmt.Sprintf("\n\nCaptured %d events before failure", len(result.AllMessages))
		}
		return nil, nil, mcperr.New(mcperr.Internal, errMsg)
	}

	text := fmt.Sprintf("success: true\nSESSION_ID: %s\nagent_messages: %s", result.SessionID, result.AgentMessages)
	if returnAllMessages && len(result.AllMessages) > 0 {
		text += fmt.Sprintf("\nall_messages: %d events captured", len(result.AllMessages))
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil, nil
}
