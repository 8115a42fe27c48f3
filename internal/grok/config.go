package grok

import (
	"fmt"
	"os"
	"strings"
	"time"

	"mcp-launch/internal/envcfg"
	"mcp-launch/internal/httpstream"
)

// DefaultModel is used when GROK_MODEL is unset or blank.
const DefaultModel = "grok-4-fast"

// Config is the immutable, explicitly-constructed replacement for the
// original process-wide singleton (see design note §9: "Global singletons
// → explicit configuration"). Build one at startup via LoadConfig and pass
// it into each tool invocation.
type Config struct {
	APIURL  string
	APIKey  string
	Model   string
	Debug   bool
	Retry   httpstream.RetryPolicy
}

// LoadConfig reads every GROK_* environment variable once. Available
// reports whether both GROK_API_URL and GROK_API_KEY are set, matching
// detection.rs's grok_available rule.
func LoadConfig() (cfg Config, available bool) {
	cfg.APIURL = os.Getenv("GROK_API_URL")
	cfg.APIKey = os.Getenv("GROK_API_KEY")

	model := strings.TrimSpace(os.Getenv("GROK_MODEL"))
	if model == "" {
		model = DefaultModel
	}
	cfg.Model = model

	debugBool, _ := envcfg.LookupBool("GROK_DEBUG")
	cfg.Debug = debugBool == envcfg.True

	cfg.Retry = httpstream.RetryPolicy{
		MaxAttempts: envcfg.GetInt("GROK_RETRY_MAX_ATTEMPTS", 3),
		Multiplier:  envcfg.GetFloat64("GROK_RETRY_MULTIPLIER", 1.0),
		MaxWait:     time.Duration(envcfg.GetInt("GROK_RETRY_MAX_WAIT", 10)) * time.Second,
	}

	available = cfg.APIURL != "" && cfg.APIKey != ""
	return cfg, available
}

// GetConfigInfo renders the get_config_info tool payload. The API key is
// never included, matching the original's explicit omission.
func (c Config) GetConfigInfo() map[string]any {
	status := "✅ Configuration complete"
	apiURL := c.APIURL
	switch {
	case apiURL == "":
		apiURL = "Not configured"
		status = "❌ Configuration error: GROK_API_URL not set. Please configure the environment variable."
	case c.APIKey == "":
		status = "❌ GROK_API_KEY not set"
	}

	return map[string]any{
		"GROK_API_URL":  apiURL,
		"GROK_MODEL":    c.Model,
		"GROK_DEBUG":    c.Debug,
		"config_status": status,
	}
}

func (c Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("GROK_API_URL not set. Please configure the environment variable")
	}
	if c.APIKey == "" {
		return fmt.Errorf("GROK_API_KEY not set. Please configure the environment variable")
	}
	return nil
}
