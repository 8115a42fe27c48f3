// Package geminiimage implements a single-shot (non-streaming) client for
// the Gemini generateContent REST endpoint, used by the gemini_image tool.
// Unlike internal/grok, there is no retry/backoff policy here: the original
// treats image generation as out of scope for its retry machinery.
package geminiimage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config carries the endpoint, credentials, and model for one request.
type Config struct {
	APIURL string
	APIKey string
	Model  string
	Client *http.Client
}

// Image is one generated image as base64-encoded data plus its MIME type.
type Image struct {
	Data     string
	MimeType string
}

// Result is the outcome of a generateContent call: any text commentary the
// model produced, alongside zero or more generated images.
type Result struct {
	Text   string
	Images []Image
}

type generateContentRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error"`
}

type candidate struct {
	Content *candidateContent `json:"content"`
}

type candidateContent struct {
	Parts []responsePart `json:"parts"`
}

type responsePart struct {
	Text       string      `json:"text"`
	InlineData *inlineData `json:"inlineData"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type apiError struct {
	Message string `json:"message"`
	Code    any    `json:"code"`
}

// Generate calls the Gemini API's generateContent endpoint directly (not
// via CLI) with prompt, asking for both IMAGE and TEXT response modalities.
func Generate(ctx context.Context, cfg Config, prompt string) (*Result, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(cfg.APIURL, "/"), cfg.Model)

	reqBody := generateContentRequest{
		Contents: []requestContent{
			{Parts: []requestPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("geminiimage: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("geminiimage: build request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("geminiimage: send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geminiimage: read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geminiimage: Gemini API returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("geminiimage: parse Gemini API response: %w", err)
	}

	if parsed.Error != nil {
		msg := parsed.Error.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("geminiimage: Gemini API error: %s", msg)
	}

	result := &Result{}
	for _, c := range parsed.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.InlineData != nil {
				result.Images = append(result.Images, Image{Data: p.InlineData.Data, MimeType: p.InlineData.MimeType})
			}
			if p.Text != "" {
				if result.Text == "" {
					result.Text = p.Text
				} else {
					result.Text = result.Text + "\n" + p.Text
				}
			}
		}
	}

	if len(result.Images) == 0 && result.Text == "" {
		return nil, fmt.Errorf("geminiimage: Gemini API returned no content (no images or text)")
	}

	return result, nil
}
