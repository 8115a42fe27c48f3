// Package httpstream implements a Server-Sent-Events-style chat-completions
// client: incremental chunk reads, delta-content reassembly, and a retrying
// request loop with exponential backoff and jitter honoring Retry-After.
package httpstream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message is one chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config is the immutable connection info for one streaming call.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Client  *http.Client
	Retry   RetryPolicy
	Logger  zerolog.Logger
}

type deltaChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// StreamChatCompletion posts messages with stream:true and returns the
// concatenated assistant content, retrying per cfg.Retry on transient
// failures.
func StreamChatCompletion(ctx context.Context, cfg Config, messages []Message) (string, error) {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= policy.MaxAttempts; attempt++ {
		content, retryAfter, retryable, err := attemptOnce(ctx, client, cfg, messages)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable || attempt == policy.MaxAttempts {
			return "", err
		}

		wait := NextBackoff(attempt, policy.Multiplier, policy.MaxWait, rng)
		if retryAfter > 0 {
			wait = retryAfter
		}
		cfg.Logger.Warn().Err(err).Dur("wait", wait).Int("attempt", attempt+1).Msg("retrying chat completion request")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", lastErr
}

func attemptOnce(ctx context.Context, client *http.Client, cfg Config, messages []Message) (content string, retryAfter time.Duration, retryable bool, err error) {
	body, err := json.Marshal(map[string]any{
		"model":    cfg.Model,
		"messages": messages,
		"stream":   true,
	})
	if err != nil {
		return "", 0, false, fmt.Errorf("httpstream: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", 0, false, fmt.Errorf("httpstream: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, true, fmt.Errorf("httpstream: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		wait := time.Duration(0)
		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if d, ok := ParseRetryAfter(ra, time.Now()); ok {
					wait = d
				}
			}
		}
		drained, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		retryable = IsRetryableStatus(resp.StatusCode)
		return "", wait, retryable, fmt.Errorf("httpstream: status %d: %s", resp.StatusCode, strings.TrimSpace(string(drained)))
	}

	content, err = parseStreamingResponse(resp.Body)
	if err != nil {
		return "", 0, false, err
	}
	return content, 0, false, nil
}

// parseStreamingResponse reads the SSE-style body incrementally, extracting
// delta.content fragments, and falls back to a whole-buffer non-streaming
// parse if nothing was accumulated from deltas.
func parseStreamingResponse(body io.Reader) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var content strings.Builder
	var retained []string
	finished := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		retained = append(retained, line)

		payload, isData := cutDataPrefix(line)
		if !isData {
			continue
		}
		if payload == "[DONE]" {
			finished = true
			break
		}

		var chunk deltaChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 {
			content.WriteString(chunk.Choices[0].Delta.Content)
			if chunk.Choices[0].FinishReason != nil {
				finished = true
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("httpstream: read body: %w", err)
	}
	_ = finished

	if content.Len() > 0 {
		return content.String(), nil
	}

	// Fallback: attempt a single non-streaming parse of the retained lines.
	joined := strings.Join(retained, "")
	var whole struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(joined), &whole); err == nil && len(whole.Choices) > 0 {
		return whole.Choices[0].Message.Content, nil
	}
	return "", nil
}

func cutDataPrefix(line string) (string, bool) {
	const prefix = "data:"
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
}
