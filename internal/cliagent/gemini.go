package cliagent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"mcp-launch/internal/policy"
)

const (
	geminiPromptDeprecationWarning = "The --prompt (-p) flag has been deprecated"
	geminiMaxMessagesLimit         = 10000
	geminiMaxNonJSONLines          = 1000
	geminiMaxStderrBytes           = 100_000
	envDefaultTimeout              = "GEMINI_DEFAULT_TIMEOUT"
	envForceModel                  = "GEMINI_FORCE_MODEL"
)

// GeminiOptions mirrors gemini.rs::Options.
type GeminiOptions struct {
	Prompt             string
	Sandbox            bool
	SessionID          string
	ReturnAllMessages  bool
	Model              string
	TimeoutSecs        uint64
	IncludeDirectories []string
}

// GeminiResult mirrors gemini.rs::GeminiResult.
type GeminiResult struct {
	Success              bool
	SessionID            string
	AgentMessages        string
	AllMessages          []any
	AllMessagesTruncated bool
	ReturnAllMessages    bool
	Error                string
}

func getDefaultGeminiTimeout() uint64 {
	v := strings.TrimSpace(os.Getenv(envDefaultTimeout))
	if v == "" {
		return policy.DefaultTimeoutSecs
	}
	secs, err := strconv.ParseUint(v, 10, 64)
	if err != nil || secs < policy.MinTimeoutSecs || secs > policy.MaxTimeoutSecs {
		return policy.DefaultTimeoutSecs
	}
	return secs
}

func getForceModel() string {
	return strings.TrimSpace(os.Getenv(envForceModel))
}

// RunGemini executes the gemini CLI per opts. Unlike RunCodex, invalid
// timeout_secs or an empty prompt are validation errors returned directly
// (the original rejects these before ever spawning a process).
func RunGemini(ctx context.Context, opts GeminiOptions) (GeminiResult, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return GeminiResult{}, fmt.Errorf("prompt must be a non-empty, non-whitespace string")
	}
	if opts.TimeoutSecs != 0 && (opts.TimeoutSecs < policy.MinTimeoutSecs || opts.TimeoutSecs > policy.MaxTimeoutSecs) {
		return GeminiResult{}, fmt.Errorf("timeout_secs must be between %d and %d seconds", policy.MinTimeoutSecs, policy.MaxTimeoutSecs)
	}

	timeoutSecs := opts.TimeoutSecs
	if timeoutSecs == 0 {
		timeoutSecs = getDefaultGeminiTimeout()
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	resCh := make(chan GeminiResult, 1)
	go func() {
		resCh <- runGeminiInternal(ctx, opts)
	}()

	select {
	case res := <-resCh:
		return res, nil
	case <-ctx.Done():
		<-resCh
		return GeminiResult{}, fmt.Errorf("gemini command timed out after %d seconds", timeoutSecs)
	}
}

func buildGeminiCommand(opts GeminiOptions) (string, []string) {
	defaultName := "gemini"
	if runtime.GOOS == "windows" {
		defaultName = "gemini.cmd"
	}
	binary := resolveBinary("GEMINI_BIN", defaultName)

	args := []string{"-y", "-o", "stream-json"}
	if opts.Sandbox {
		args = append(args, "--sandbox")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = getForceModel()
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	if opts.SessionID != "" {
		args = append(args, "--resume", opts.SessionID)
	}

	for _, dir := range opts.IncludeDirectories {
		args = append(args, "--include-directories", dir)
	}

	return binary, args
}

func runGeminiInternal(ctx context.Context, opts GeminiOptions) GeminiResult {
	binary, args := buildGeminiCommand(opts)

	result := GeminiResult{Success: true, ReturnAllMessages: opts.ReturnAllMessages}

	var nonJSONLines []string
	validJSONSeen := false

	cfg := runConfig{
		program:      binary,
		args:         args,
		stdinContent: opts.Prompt,
		useStdin:     true,
		stderrCap:    geminiMaxStderrBytes,
		stdoutDrain: func(r io.Reader, _ func()) error {
			lr := newUnboundedLineReader(r)
			for {
				lineBytes, eof := lr.next()
				if len(lineBytes) == 0 && eof {
					return nil
				}
				trimmed := strings.TrimSpace(string(lineBytes))
				if trimmed != "" {
					var data any
					if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
						if len(nonJSONLines) < geminiMaxNonJSONLines {
							nonJSONLines = append(nonJSONLines, trimmed)
						}
					} else {
						validJSONSeen = true
						processGeminiLine(data, &result, opts.ReturnAllMessages)
					}
				}
				if eof {
					return nil
				}
			}
		},
	}

	procRes, err := runProcess(ctx, cfg)
	if err != nil {
		return GeminiResult{Success: false, Error: err.Error()}
	}

	if procRes.waitErr != nil {
		result.Success = false
		errMsg := result.Error
		if errMsg == "" {
			errMsg = fmt.Sprintf("gemini command failed: %s", procRes.waitErr.Error())
		}
		if procRes.stderr != "" {
			errMsg = fmt.Sprintf("%s\nStderr: %s", errMsg, procRes.stderr)
		}
		if len(nonJSONLines) > 0 {
			errMsg = fmt.Sprintf("%s\nNon-JSON output: %s", errMsg, strings.Join(nonJSONLines, "\n"))
		}
		result.Error = errMsg
	} else if len(nonJSONLines) > 0 && !validJSONSeen {
		result.Success = false
		result.Error = fmt.Sprintf("No valid JSON output received from gemini CLI.\nOutput: %s", strings.Join(nonJSONLines, "\n"))
	}

	return enforceGeminiRequiredFields(result)
}

// processGeminiLine mutates result per one decoded JSON value from gemini's
// stdout, matching gemini.rs's session_id/type/role/content field
// extraction and its case-insensitive error detection.
func processGeminiLine(lineData any, result *GeminiResult, returnAllMessages bool) {
	if returnAllMessages {
		if len(result.AllMessages) < geminiMaxMessagesLimit {
			result.AllMessages = append(result.AllMessages, lineData)
		} else {
			result.AllMessagesTruncated = true
		}
	}

	obj, _ := lineData.(map[string]any)
	if obj == nil {
		return
	}

	if sessionID, ok := obj["session_id"].(string); ok && sessionID != "" {
		result.SessionID = sessionID
	}

	itemType, _ := obj["type"].(string)
	itemRole, _ := obj["role"].(string)

	if itemType == "message" && itemRole == "assistant" {
		if content, ok := obj["content"].(string); ok && content != geminiPromptDeprecationWarning {
			if result.AgentMessages != "" {
				result.AgentMessages += "\n"
			}
			result.AgentMessages += content
		}
	}

	itemTypeLower := strings.ToLower(itemType)
	hasExplicitError := strings.Contains(itemTypeLower, "fail") || strings.Contains(itemTypeLower, "error")
	_, hasErrorObj := obj["error"]

	if hasExplicitError || hasErrorObj {
		result.Success = false
		if errObj, ok := obj["error"].(map[string]any); ok {
			if msg, ok := errObj["message"].(string); ok {
				result.Error = "gemini error: " + msg
			}
		} else if msg, ok := obj["message"].(string); ok {
			result.Error = "gemini error: " + msg
		}
	}
}

func enforceGeminiRequiredFields(result GeminiResult) GeminiResult {
	var errs []string

	if result.SessionID == "" {
		errs = append(errs, "Failed to get `SESSION_ID` from the gemini session.")
	}

	switch {
	case result.AgentMessages == "" && !result.ReturnAllMessages:
		errs = append(errs, "Failed to get `agent_messages` from the gemini session.\nYou can try to set `return_all_messages` to `True` to get the full information.")
	case result.AgentMessages == "" && result.ReturnAllMessages && len(result.AllMessages) == 0:
		errs = append(errs, "Failed to get any messages from the gemini session.")
	}

	if len(errs) > 0 {
		result.Success = false
		newError := strings.Join(errs, "\n")
		if result.Error != "" {
			result.Error = result.Error + "\n" + newError
		} else {
			result.Error = newError
		}
	}

	return result
}
