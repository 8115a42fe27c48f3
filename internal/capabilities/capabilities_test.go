package capabilities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFindBinaryPrefersEnvOverride(t *testing.T) {
	dir := t.TempDir()
	fakeBin := filepath.Join(dir, "fake-gemini")
	assert.NoError(t, os.WriteFile(fakeBin, []byte("#!/bin/sh\n"), 0o755))

	t.Setenv("GEMINI_BIN", fakeBin)
	assert.Equal(t, fakeBin, findBinary("gemini", "GEMINI_BIN"))
}

func TestFindBinaryIgnoresNonexistentOverride(t *testing.T) {
	t.Setenv("GEMINI_BIN", "/nonexistent/path/to/gemini")
	assert.Equal(t, "", findBinary("definitely-not-a-real-binary-xyz", "GEMINI_BIN"))
}

func TestDetectGrokAvailableRequiresBothVars(t *testing.T) {
	t.Setenv("GROK_API_URL", "")
	t.Setenv("GROK_API_KEY", "")
	t.Setenv("GEMINI_BIN", "")
	t.Setenv("CODEX_BIN", "")

	caps := Detect(zerolog.Nop())
	assert.False(t, caps.GrokAvailable)

	t.Setenv("GROK_API_URL", "https://api.x.ai/v1")
	t.Setenv("GROK_API_KEY", "secret")
	caps = Detect(zerolog.Nop())
	assert.True(t, caps.GrokAvailable)
}
