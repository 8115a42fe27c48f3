package cliagent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"mcp-launch/internal/linelimit"
	"mcp-launch/internal/policy"
)

// CodexOptions mirrors codex.rs::Options: the full set of knobs the codex
// tool handler can pass through after policy/argument validation.
type CodexOptions struct {
	Prompt                 string
	WorkingDir             string
	Sandbox                policy.Sandbox
	SessionID              string
	SkipGitRepoCheck       bool
	ReturnAllMessages      bool
	ReturnAllMessagesLimit int
	ImagePaths             []string
	Model                  string
	Yolo                   bool
	Profile                string
	TimeoutSecs            uint64
	ForceStdin             bool
}

// CodexResult mirrors codex.rs::CodexResult.
type CodexResult struct {
	Success                bool
	SessionID              string
	AgentMessages          string
	AgentMessagesTruncated bool
	AllMessages            []map[string]any
	AllMessagesTruncated   bool
	Error                  string
	Warnings               string
}

const (
	codexMaxMessageLimit      = 50000
	codexDefaultMessageLimit  = 10000
	codexMaxAgentMessagesSize = 10 * 1024 * 1024
	codexMaxAllMessagesSize   = 50 * 1024 * 1024
	codexMaxStderrSize        = 1024 * 1024
	codexMaxLineLength        = 1024 * 1024
)

// RunCodex executes the codex CLI per opts, enforcing a hard timeout that
// returns a failed, session-id-less result rather than propagating a Go
// error — matching the original's "timeout is a result, not an error"
// contract for the MCP tool response.
func RunCodex(ctx context.Context, opts CodexOptions) CodexResult {
	timeoutSecs := normalizeTimeoutSecs(opts.TimeoutSecs)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	resCh := make(chan CodexResult, 1)
	go func() {
		resCh <- runCodexInternal(ctx, opts)
	}()

	select {
	case res := <-resCh:
		return res
	case <-ctx.Done():
		<-resCh // wait for the killed subprocess to actually finish cleanup
		return CodexResult{
			Success: false,
			Error:   fmt.Sprintf("Codex execution timed out after %d seconds", timeoutSecs),
		}
	}
}

func normalizeTimeoutSecs(secs uint64) uint64 {
	switch {
	case secs == 0:
		return policy.DefaultTimeoutSecs
	case secs > policy.MaxTimeoutSecs:
		return policy.MaxTimeoutSecs
	default:
		return secs
	}
}

func runCodexInternal(ctx context.Context, opts CodexOptions) CodexResult {
	binary := resolveBinary("CODEX_BIN", "codex")

	args := []string{"exec", "--sandbox", opts.Sandbox.String(), "--cd", opts.WorkingDir, "--json"}
	for _, img := range opts.ImagePaths {
		args = append(args, "--image", img)
	}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.Profile != "" {
		args = append(args, "--profile", opts.Profile)
	}
	if opts.Yolo {
		args = append(args, "--yolo")
	}
	if opts.SkipGitRepoCheck {
		args = append(args, "--skip-git-repo-check")
	}
	if opts.ReturnAllMessages {
		args = append(args, "--return-all-messages")
		if opts.ReturnAllMessagesLimit > 0 {
			args = append(args, "--return-all-messages-limit", strconv.Itoa(opts.ReturnAllMessagesLimit))
		}
	}
	if opts.SessionID != "" {
		args = append(args, "resume", opts.SessionID)
	}

	useStdin := opts.ForceStdin || needsStdinMode(opts.Prompt)
	if useStdin {
		args = append(args, "--", "-")
	} else {
		args = append(args, "--", opts.Prompt)
	}

	result := CodexResult{Success: true}

	messageLimit := opts.ReturnAllMessagesLimit
	if messageLimit <= 0 {
		messageLimit = codexDefaultMessageLimit
	}
	if messageLimit > codexMaxMessageLimit {
		messageLimit = codexMaxMessageLimit
	}
	allMessagesSize := 0
	parseErrorSeen := false

	cfg := runConfig{
		program:      binary,
		args:         args,
		stdinContent: opts.Prompt,
		useStdin:     useStdin,
		stderrCap:    codexMaxStderrSize,
		stdoutDrain: func(r io.Reader, kill func()) error {
			lr := linelimit.New(r)
			for {
				lineBytes, truncated, rerr := lr.ReadLine(codexMaxLineLength)
				if len(lineBytes) == 0 && rerr != nil {
					return nil
				}
				if truncated {
					result.Success = false
					result.Error = fmt.Sprintf("Output line exceeded %d byte limit and was truncated, cannot parse JSON.", codexMaxLineLength)
					if !parseErrorSeen {
						parseErrorSeen = true
						kill()
					}
					if rerr != nil {
						return nil
					}
					continue
				}

				line := string(lineBytes)
				if line == "" {
					if rerr != nil {
						return nil
					}
					continue
				}
				if !parseErrorSeen {
					parseFailed := processCodexLine(line, &result, opts.ReturnAllMessages, messageLimit, &allMessagesSize)
					if parseFailed {
						parseErrorSeen = true
						kill()
					}
				}
				if rerr != nil {
					return nil
				}
			}
		},
	}

	procRes, err := runProcess(ctx, cfg)
	if err != nil {
		return CodexResult{Success: false, Error: err.Error()}
	}

	if procRes.waitErr != nil {
		result.Success = false
		errMsg := result.Error
		if errMsg == "" {
			errMsg = fmt.Sprintf("codex command failed: %s", procRes.waitErr.Error())
		}
		if procRes.stderr != "" {
			result.Error = fmt.Sprintf("%s\nStderr: %s", errMsg, procRes.stderr)
		} else {
			result.Error = errMsg
		}
	} else if procRes.stderr != "" {
		result.Warnings = procRes.stderr
	}

	return enforceCodexRequiredFields(result)
}

// processCodexLine mutates result per one decoded JSON line from codex's
// stdout, matching codex.rs's thread_id/item/type field extraction. It
// reports true when line failed to parse as JSON, signalling the caller to
// kill the subprocess (codex is expected to emit one JSON object per line;
// anything else indicates a protocol break worth aborting on).
func processCodexLine(line string, result *CodexResult, returnAllMessages bool, messageLimit int, allMessagesSize *int) bool {
	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		parseMsg := fmt.Sprintf("JSON parse error: %s. Line: %s", err, line)
		result.Success = false
		if result.Error != "" {
			result.Error = result.Error + "\n" + parseMsg
		} else {
			result.Error = parseMsg
		}
		return true
	}

	if returnAllMessages {
		if len(result.AllMessages) < messageLimit {
			encoded, _ := json.Marshal(data)
			if *allMessagesSize+len(encoded) <= codexMaxAllMessagesSize {
				*allMessagesSize += len(encoded)
				result.AllMessages = append(result.AllMessages, data)
			} else {
				result.AllMessagesTruncated = true
			}
		} else {
			result.AllMessagesTruncated = true
		}
	}

	if threadID, ok := data["thread_id"].(string); ok && threadID != "" {
		result.SessionID = threadID
	}

	if item, ok := data["item"].(map[string]any); ok {
		if itemType, _ := item["type"].(string); itemType == "agent_message" {
			if text, ok := item["text"].(string); ok {
				newSize := len(result.AgentMessages) + len(text)
				if newSize > codexMaxAgentMessagesSize {
					if !result.AgentMessagesTruncated {
						result.AgentMessages += "\n[... Agent messages truncated due to size limit ...]"
						result.AgentMessagesTruncated = true
					}
				} else if !result.AgentMessagesTruncated {
					if result.AgentMessages != "" && text != "" {
						result.AgentMessages += "\n"
					}
					result.AgentMessages += text
				}
			}
		}
	}

	if lineType, ok := data["type"].(string); ok {
		if containsAny(lineType, "fail", "error") {
			result.Success = false
			if errObj, ok := data["error"].(map[string]any); ok {
				if msg, ok := errObj["message"].(string); ok {
					result.Error = "codex error: " + msg
				}
			} else if msg, ok := data["message"].(string); ok {
				result.Error = "codex error: " + msg
			}
		}
	}

	return false
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func enforceCodexRequiredFields(result CodexResult) CodexResult {
	if result.SessionID == "" && result.Error == "" {
		result.Success = false
		result.Error = "Failed to get SESSION_ID from the codex session."
	}
	if result.AgentMessages == "" {
		warning := "No agent_messages returned; enable return_all_messages or check codex output for details."
		if result.Warnings != "" {
			result.Warnings += "\n" + warning
		} else {
			result.Warnings = warning
		}
	}
	return result
}
