package grok

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsTimeContextChinese(t *testing.T) {
	assert.True(t, NeedsTimeContext("今天天气怎么样"))
	assert.True(t, NeedsTimeContext("最新的Rust版本"))
	assert.True(t, NeedsTimeContext("目前市场行情"))
	assert.False(t, NeedsTimeContext("Rust语言教程"))
	assert.False(t, NeedsTimeContext("如何写代码"))
}

func TestNeedsTimeContextEnglish(t *testing.T) {
	assert.True(t, NeedsTimeContext("latest rust release"))
	assert.True(t, NeedsTimeContext("what happened today"))
	assert.True(t, NeedsTimeContext("Current weather"))
	assert.True(t, NeedsTimeContext("recent news"))
	assert.False(t, NeedsTimeContext("how to write rust code"))
	assert.False(t, NeedsTimeContext("rust programming tutorial"))
}

func TestNeedsTimeContextMixed(t *testing.T) {
	assert.True(t, NeedsTimeContext("最新 Rust release"))
	assert.True(t, NeedsTimeContext("latest Rust版本"))
	assert.False(t, NeedsTimeContext("Rust programming 教程"))
}

func TestLocalTimeContextBlockContents(t *testing.T) {
	now := time.Date(2026, 7, 30, 14, 5, 9, 0, time.UTC)
	block := LocalTimeContextBlock(now)
	assert.Contains(t, block, "[Current Time Context]")
	assert.Contains(t, block, "Date:")
	assert.Contains(t, block, "Time:")
	assert.Contains(t, block, "Timezone:")
	assert.Contains(t, block, "星期四") // 2026-07-30 is a Thursday
}

func TestWithTimeContextOnlyAppliesWhenNeeded(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "rust programming tutorial", WithTimeContext("rust programming tutorial", now))
	assert.Contains(t, WithTimeContext("latest rust release", now), "[Current Time Context]")
}

func TestFormatSearchResultsEmpty(t *testing.T) {
	assert.Equal(t, "No results found.", FormatSearchResults(nil))
}

func TestFormatSearchResultsSingle(t *testing.T) {
	out := FormatSearchResults([]SearchResult{
		{Title: "Test Title", URL: "https://example.com", Snippet: "A test snippet"},
	})
	assert.Contains(t, out, "## Result 1: Test Title")
	assert.Contains(t, out, "**URL:** https://example.com")
	assert.Contains(t, out, "**Summary:** A test snippet")
	assert.NotContains(t, out, "**Source:**")
}

func TestFormatSearchResultsMultiple(t *testing.T) {
	out := FormatSearchResults([]SearchResult{
		{Title: "First", URL: "https://a.com", Snippet: "Snippet A", Source: "SourceA", PublishedDate: "2024-01-01"},
		{Title: "Second", URL: "https://b.com", Snippet: "Snippet B"},
	})
	assert.Contains(t, out, "## Result 1: First")
	assert.Contains(t, out, "## Result 2: Second")
	assert.Contains(t, out, "---")
	assert.Contains(t, out, "**Source:** SourceA")
	assert.Contains(t, out, "**Published:** 2024-01-01")
}

func TestSearchResultUnmarshalDescriptionAlias(t *testing.T) {
	var r SearchResult
	err := r.UnmarshalJSON([]byte(`{"title":"T","url":"http://x","description":"D"}`))
	assert.NoError(t, err)
	assert.Equal(t, "D", r.Snippet)
}

func TestPromptsNonEmpty(t *testing.T) {
	assert.Contains(t, SearchPrompt, "MCP")
	assert.Contains(t, FetchPrompt, "Markdown")
}

func TestGetConfigInfoNeverIncludesAPIKey(t *testing.T) {
	cfg := Config{APIURL: "https://api.x.ai/v1", APIKey: "secret-key", Model: "grok-4-fast"}
	info := cfg.GetConfigInfo()
	for _, v := range info {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "secret-key")
		}
	}
	assert.Equal(t, "✅ Configuration complete", info["config_status"])
}

func TestGetConfigInfoMissingAPIKey(t *testing.T) {
	cfg := Config{APIURL: "https://api.x.ai/v1", Model: "grok-4-fast"}
	info := cfg.GetConfigInfo()
	assert.Equal(t, "❌ GROK_API_KEY not set", info["config_status"])
}
