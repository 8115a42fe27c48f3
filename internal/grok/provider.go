// Package grok implements the web_search/web_fetch tool backend: a Grok
// (x.ai-compatible) chat-completions client with time-context injection,
// streaming response parsing, and retry with backoff.
package grok

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mcp-launch/internal/httpstream"
)

// Provider issues search/fetch requests against the configured Grok-style
// chat-completions endpoint.
type Provider struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewProvider builds a Provider from cfg with one overall 120-second request
// timeout and a 10-redirect limit. There is no separate connect timeout.
func NewProvider(cfg Config, logger zerolog.Logger) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("grok: stopped after 10 redirects")
				}
				return nil
			},
		},
		logger: logger,
	}, nil
}

// Search performs a web search via the system prompt plus a user message
// assembled from query, an optional platform hint, and an optional
// min/max-results instruction, with time-context injection applied first.
func (p *Provider) Search(ctx context.Context, query, platform string, minResults, maxResults int) (string, error) {
	var platformPrompt, returnPrompt string
	if platform != "" {
		platformPrompt = "\n\nYou should search the web for the information you need, and focus on these platform: " + platform
	}
	if maxResults > 0 {
		returnPrompt = "\n\nYou should return the results in a JSON format, and the results should at least be " +
			strconv.Itoa(minResults) + " and at most be " + strconv.Itoa(maxResults) + " results."
	}

	userContent := WithTimeContext(query, time.Now()) + platformPrompt + returnPrompt

	if p.cfg.Debug {
		p.logger.Debug().Str("user_content", userContent).Msg("grok search payload")
	}

	return p.stream(ctx, SearchPrompt, userContent)
}

// Fetch retrieves url's content rendered as structured Markdown.
func (p *Provider) Fetch(ctx context.Context, url string) (string, error) {
	userContent := url + "\n获取该网页内容并返回其结构化Markdown格式"
	return p.stream(ctx, FetchPrompt, userContent)
}

func (p *Provider) stream(ctx context.Context, systemPrompt, userContent string) (string, error) {
	cfg := httpstream.Config{
		URL:    strings.TrimRight(p.cfg.APIURL, "/") + "/chat/completions",
		APIKey: p.cfg.APIKey,
		Model:  p.cfg.Model,
		Client: p.client,
		Retry:  p.cfg.Retry,
		Logger: p.logger,
	}
	return httpstream.StreamChatCompletion(ctx, cfg, []httpstream.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userContent},
	})
}

// TestConnection calls the /models endpoint to verify connectivity,
// returning a structured status payload for diagnostics.
func (p *Provider) TestConnection(ctx context.Context) (map[string]any, error) {
	modelsURL := strings.TrimRight(p.cfg.APIURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("grok: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grok: connect: %w", err)
	}
	defer resp.Body.Close()
	elapsedMS := time.Since(start).Milliseconds()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return map[string]any{
			"status":           "✅ Connected",
			"message":          fmt.Sprintf("Successfully retrieved model list (HTTP %d)", resp.StatusCode),
			"response_time_ms": elapsedMS,
		}, nil
	}
	return map[string]any{
		"status":           "⚠️ Connection error",
		"message":          fmt.Sprintf("HTTP %d", resp.StatusCode),
		"response_time_ms": elapsedMS,
	}, nil
}
