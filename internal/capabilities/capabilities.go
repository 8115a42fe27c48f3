// Package capabilities detects which CLI agents and API-backed providers
// are available at startup: gemini/codex binaries on PATH (or an env-var
// override), and Grok API credentials.
package capabilities

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// Capabilities is the result of a one-time startup detection pass.
type Capabilities struct {
	GeminiAvailable bool
	GeminiPath      string
	CodexAvailable  bool
	CodexPath       string
	GrokAvailable   bool
}

// Detect probes for the gemini/codex binaries and Grok API credentials,
// logging a human-readable summary to logger at Info level.
func Detect(logger zerolog.Logger) Capabilities {
	geminiPath := findBinary("gemini", "GEMINI_BIN")
	codexPath := findBinary("codex", "CODEX_BIN")
	grokAvailable := os.Getenv("GROK_API_URL") != "" && os.Getenv("GROK_API_KEY") != ""

	caps := Capabilities{
		GeminiAvailable: geminiPath != "",
		GeminiPath:      geminiPath,
		CodexAvailable:  codexPath != "",
		CodexPath:       codexPath,
		GrokAvailable:   grokAvailable,
	}

	logger.Info().Msg("tools detection:")
	logger.Info().Msg("  Gemini:  " + statusLine(caps.GeminiAvailable, caps.GeminiPath, "API key configured"))
	logger.Info().Msg("  Codex:   " + statusLine(caps.CodexAvailable, caps.CodexPath, "API key configured"))
	logger.Info().Msg("  Grok:    " + grokStatusLine(caps.GrokAvailable))

	return caps
}

func statusLine(available bool, path, _ string) string {
	if available {
		return fmt.Sprintf("✓ (%s)", path)
	}
	return "✗ (not found)"
}

func grokStatusLine(available bool) string {
	if available {
		return "✓ (API key configured)"
	}
	return "✗ (GROK_API_URL or GROK_API_KEY not set)"
}

// findBinary resolves name to a path: an env-var override takes priority
// (returned as given) if it names an existing file, otherwise PATH is
// searched.
func findBinary(name, envOverride string) string {
	if override := os.Getenv(envOverride); override != "" {
		if info, err := os.Stat(override); err == nil && !info.IsDir() {
			return override
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	return ""
}
