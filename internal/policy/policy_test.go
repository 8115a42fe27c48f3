package policy

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySecurityRestrictionsAllDowngraded(t *testing.T) {
	req := SecurityRequest{Sandbox: DangerFullAccess, Yolo: true, SkipGitRepoCheck: true}
	out, warnings := ApplySecurityRestrictions(req, SecurityConfig{})

	assert.Equal(t, ReadOnly, out.Sandbox)
	assert.False(t, out.Yolo)
	assert.False(t, out.SkipGitRepoCheck)
	assert.Len(t, warnings, 3)
}

func TestApplySecurityRestrictionsAllPermitted(t *testing.T) {
	req := SecurityRequest{Sandbox: DangerFullAccess, Yolo: true, SkipGitRepoCheck: true}
	cfg := SecurityConfig{AllowDangerous: true, AllowYolo: true, AllowSkipGitCheck: true}
	out, warnings := ApplySecurityRestrictions(req, cfg)

	assert.Equal(t, DangerFullAccess, out.Sandbox)
	assert.True(t, out.Yolo)
	assert.True(t, out.SkipGitRepoCheck)
	assert.Empty(t, warnings)
}

func TestResolveTimeoutDefaults(t *testing.T) {
	v, warning := ResolveTimeout(0, "NO_SUCH_TIMEOUT_ENV_VAR")
	assert.Equal(t, uint64(DefaultTimeoutSecs), v)
	assert.Empty(t, warning)
}

func TestResolveTimeoutClampsAboveMax(t *testing.T) {
	v, warning := ResolveTimeout(100000, "NO_SUCH_TIMEOUT_ENV_VAR")
	assert.Equal(t, uint64(MaxTimeoutSecs), v)
	assert.NotEmpty(t, warning)
}

func TestResolveTimeoutRejectsZeroEnvDefault(t *testing.T) {
	t.Setenv("CODEX_TEST_TIMEOUT", "0")
	v, warning := ResolveTimeout(0, "CODEX_TEST_TIMEOUT")
	assert.Equal(t, uint64(DefaultTimeoutSecs), v)
	assert.Contains(t, warning, "is invalid")
}

func TestResolveTimeoutIdempotent(t *testing.T) {
	v1, w1 := ResolveTimeout(45, "NO_SUCH_TIMEOUT_ENV_VAR")
	v2, w2 := ResolveTimeout(45, "NO_SUCH_TIMEOUT_ENV_VAR")
	assert.Equal(t, v1, v2)
	assert.Equal(t, w1, w2)
}

func TestMergeWarningsOrderedPolicyThenOrchestrator(t *testing.T) {
	out := MergeWarnings([]string{"p1", "p2"}, []string{"o1"})
	assert.Equal(t, "p1\np2\no1", out)
}

func TestMergeWarningsEmpty(t *testing.T) {
	assert.Empty(t, MergeWarnings(nil, []string{}))
}

func TestCanonicalizeImagePathsRelativeToWorkingDir(t *testing.T) {
	dir := t.TempDir()
	f := dir + "/image.png"
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	out, err := CanonicalizeImagePaths([]string{"image.png"}, dir)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "image.png")
}
