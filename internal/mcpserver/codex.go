package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-launch/internal/cliagent"
	"mcp-launch/internal/mcperr"
	"mcp-launch/internal/policy"
)

// codexArgs mirrors server.rs's CodexArgs.
type codexArgs struct {
	Prompt                 string   `json:"PROMPT" jsonschema:"Instruction for task to send to codex"`
	Cd                     string   `json:"cd" jsonschema:"Set the workspace root for codex before executing the task"`
	Sandbox                string   `json:"sandbox,omitempty" jsonschema:"Sandbox policy for model-generated commands: read-only, workspace-write, or danger-full-access. Defaults to read-only"`
	SessionID              string   `json:"SESSION_ID,omitempty" jsonschema:"Resume the specified session of the codex"`
	SkipGitRepoCheck       bool     `json:"skip_git_repo_check,omitempty" jsonschema:"Allow codex running outside a Git repository"`
	ReturnAllMessages      bool     `json:"return_all_messages,omitempty" jsonschema:"Return all messages from the codex session"`
	ReturnAllMessagesLimit int      `json:"return_all_messages_limit,omitempty" jsonschema:"Maximum number of messages to keep when return_all_messages is true (default 10000)"`
	Image                  []string `json:"image,omitempty" jsonschema:"Attach one or more image files to the initial prompt"`
	Model                  string   `json:"model,omitempty" jsonschema:"The model to use for the codex session"`
	Yolo                   bool     `json:"yolo,omitempty" jsonschema:"Run every command without approvals or sandboxing"`
	Profile                string   `json:"profile,omitempty" jsonschema:"Configuration profile name to load from ~/.codex/config.toml"`
	TimeoutSecs            uint64   `json:"timeout_secs,omitempty" jsonschema:"Timeout in seconds for codex execution. Defaults to CODEX_DEFAULT_TIMEOUT or 600. Max 3600"`
	ForceStdin             bool     `json:"force_stdin,omitempty" jsonschema:"Force passing the prompt via stdin, bypassing auto-detection"`
}

func parseSandbox(s string) policy.Sandbox {
	switch s {
	case "workspace-write":
		return policy.WorkspaceWrite
	case "danger-full-access":
		return policy.DangerFullAccess
	default:
		return policy.ReadOnly
	}
}

func registerCodex(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "codex",
		Description: "Execute Codex CLI for AI-assisted coding tasks",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args codexArgs) (*mcp.CallToolResult, any, error) {
		if !deps.Caps.CodexAvailable {
			return nil, nil, mcperr.Unavailablef("Codex CLI not found in PATH. Install codex CLI or set CODEX_BIN env var.")
		}
		if args.Prompt == "" {
			return nil, nil, mcperr.Invalidf("PROMPT is required and must be a non-empty string")
		}
		if args.Cd == "" {
			return nil, nil, mcperr.Invalidf("cd is required and must be a non-empty string")
		}

		secCfg, secWarnings := policy.ResolveSecurityConfig()
		restricted, restrictionWarnings := policy.ApplySecurityRestrictions(policy.SecurityRequest{
			Sandbox:          parseSandbox(args.Sandbox),
			Yolo:             args.Yolo,
			SkipGitRepoCheck: args.SkipGitRepoCheck,
		}, secCfg)
		secWarnings = append(secWarnings, restrictionWarnings...)

		timeoutSecs, timeoutWarning := policy.ResolveTimeout(args.TimeoutSecs, "CODEX_DEFAULT_TIMEOUT")
		if timeoutWarning != "" {
			secWarnings = append(secWarnings, timeoutWarning)
		}

		canonicalWorkingDir, err := policy.CanonicalizeWorkingDir(args.Cd)
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.InvalidArguments, fmt.Sprintf("working directory does not exist or is not accessible: %s", args.Cd), err)
		}

		canonicalImagePaths, err := policy.CanonicalizeImagePaths(args.Image, canonicalWorkingDir)
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.InvalidArguments, "image file does not exist or is not accessible", err)
		}

		result := cliagent.RunCodex(ctx, cliagent.CodexOptions{
			Prompt:                 args.Prompt,
			WorkingDir:             canonicalWorkingDir,
			Sandbox:                restricted.Sandbox,
			SessionID:              args.SessionID,
			SkipGitRepoCheck:       restricted.SkipGitRepoCheck,
			ReturnAllMessages:      args.ReturnAllMessages,
			ReturnAllMessagesLimit: args.ReturnAllMessagesLimit,
			ImagePaths:             canonicalImagePaths,
			Model:                  args.Model,
			Yolo:                   restricted.Yolo,
			Profile:                args.Profile,
			TimeoutSecs:            timeoutSecs,
			ForceStdin:             args.ForceStdin,
		})

		combinedWarnings := policy.MergeWarnings(secWarnings, splitWarnings(result.Warnings))
		return renderCodexResult(result, args.ReturnAllMessages, combinedWarnings)
	})
}

func splitWarnings(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// renderCodexResult builds the codex tool's success/error response,
// matching server.rs's build_codex_output: a JSON success envelope on
// success, or "<error>\nWarnings: <merged>" propagated as the tool error.
func renderCodexResult(result cliagent.CodexResult, returnAllMessages bool, combinedWarnings string) (*mcp.CallToolResult, any, error) {
	if !result.Success {
		errMsg := result.Error
		if combinedWarnings != "" {
			errMsg = fmt.Sprintf("%s\nWarnings: %s", errMsg, combinedWarnings)
		}
		return nil, nil, mcperr.New(mcperr.Internal, errMsg)
	}

	output := map[string]any{
		"success":        true,
		"SESSION_ID":     result.SessionID,
		"agent_messages": result.AgentMessages,
	}
	if returnAllMessages {
		output["all_messages"] = result.AllMessages
		output["all_messages_truncated"] = result.AllMessagesTruncated
	}
	if result.AgentMessagesTruncated {
		output["agent_messages_truncated"] = true
	}
	if combinedWarnings != "" {
		output["warnings"] = combinedWarnings
	}

	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: encodeJSON(output)}}}, nil, nil
}
