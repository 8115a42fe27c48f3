// Package policy reconciles user-supplied invocation options with
// server-side environment policy: security downgrades, timeout clamping,
// and path canonicalization, surfacing the reconciliation as warnings
// rather than hard failures wherever safe.
package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"mcp-launch/internal/envcfg"
)

const (
	// DefaultTimeoutSecs is used when the caller and environment both leave
	// the timeout unset or zero.
	DefaultTimeoutSecs = 600
	// MaxTimeoutSecs is the hard ceiling any resolved timeout is clamped to.
	MaxTimeoutSecs = 3600
	// MinTimeoutSecs is the hard floor any resolved timeout is clamped to.
	MinTimeoutSecs = 1
)

// Sandbox is the coarse permission level granted to a child CLI.
type Sandbox int

const (
	ReadOnly Sandbox = iota
	WorkspaceWrite
	DangerFullAccess
)

func (s Sandbox) String() string {
	switch s {
	case WorkspaceWrite:
		return "workspace-write"
	case DangerFullAccess:
		return "danger-full-access"
	default:
		return "read-only"
	}
}

// SecurityConfig holds the three independent grants, each sourced from one
// environment variable accepting envcfg's universal truthy/falsy set.
type SecurityConfig struct {
	AllowDangerous    bool
	AllowYolo         bool
	AllowSkipGitCheck bool
}

// ResolveSecurityConfig reads the three CODEX_ALLOW_* variables, recording a
// warning for any value that fails to parse (defaulting that grant to false).
func ResolveSecurityConfig() (SecurityConfig, []string) {
	var cfg SecurityConfig
	var warnings []string

	resolve := func(name string, dst *bool) {
		b, raw := envcfg.LookupBool(name)
		switch b {
		case envcfg.True:
			*dst = true
		case envcfg.False, envcfg.Unset:
			*dst = false
		case envcfg.Invalid:
			*dst = false
			warnings = append(warnings, fmt.Sprintf("%s has an invalid value %q; defaulting to false", name, raw))
		}
	}

	resolve("CODEX_ALLOW_DANGEROUS", &cfg.AllowDangerous)
	resolve("CODEX_ALLOW_YOLO", &cfg.AllowYolo)
	resolve("CODEX_ALLOW_SKIP_GIT_CHECK", &cfg.AllowSkipGitCheck)
	return cfg, warnings
}

// SecurityRequest is the caller-requested, not-yet-arbitrated set of security
// options for one invocation.
type SecurityRequest struct {
	Sandbox           Sandbox
	Yolo              bool
	SkipGitRepoCheck bool
}

// ApplySecurityRestrictions downgrades each requested permission the
// environment does not grant, emitting one independent warning per
// downgrade. The three checks never interact.
func ApplySecurityRestrictions(req SecurityRequest, cfg SecurityConfig) (SecurityRequest, []string) {
	out := req
	var warnings []string

	if out.Sandbox == DangerFullAccess && !cfg.AllowDangerous {
		warnings = append(warnings, "danger-full-access sandbox requested but not permitted by CODEX_ALLOW_DANGEROUS; downgraded to read-only")
		out.Sandbox = ReadOnly
	}
	if out.Yolo && !cfg.AllowYolo {
		warnings = append(warnings, "yolo mode requested but not permitted by CODEX_ALLOW_YOLO; disabled")
		out.Yolo = false
	}
	if out.SkipGitRepoCheck && !cfg.AllowSkipGitCheck {
		warnings = append(warnings, "skip-git-repo-check requested but not permitted by CODEX_ALLOW_SKIP_GIT_CHECK; disabled")
		out.SkipGitRepoCheck = false
	}
	return out, warnings
}

// ResolveTimeout clamps a caller-supplied timeout (0 meaning "unset") against
// the env-configured default/min/max, returning the resolved seconds and any
// warning produced along the way.
func ResolveTimeout(requested uint64, envVarName string) (uint64, string) {
	def := uint64(DefaultTimeoutSecs)
	raw, present, parseErr := envcfg.GetUint64(envVarName)
	if present && !parseErr {
		if raw == 0 {
			// An explicit "0" is as invalid as a malformed value: there is no
			// such thing as a zero-second default timeout.
			parseErr = true
		} else {
			def = raw
		}
	}

	value := requested
	if value == 0 {
		value = def
	}

	var warning string
	if parseErr {
		warning = fmt.Sprintf("%s is invalid; using default %d", envVarName, DefaultTimeoutSecs)
	}
	switch {
	case value < MinTimeoutSecs:
		value = MinTimeoutSecs
	case value > MaxTimeoutSecs:
		if warning != "" {
			warning += "\n"
		}
		warning += fmt.Sprintf("requested timeout exceeds maximum of %d seconds; clamped", MaxTimeoutSecs)
		value = MaxTimeoutSecs
	}
	return value, warning
}

// MergeWarnings concatenates warning groups in the deterministic order
// (policy first, then orchestrator) the spec requires, joining with "\n" and
// skipping empty entries.
func MergeWarnings(groups ...[]string) string {
	var all []string
	for _, g := range groups {
		for _, w := range g {
			if w != "" {
				all = append(all, w)
			}
		}
	}
	return joinNonEmpty(all, "\n")
}

func joinNonEmpty(ss []string, sep string) string {
	if len(ss) == 0 {
		return ""
	}
	out := ss[0]
	for _, s := range ss[1:] {
		out += sep + s
	}
	return out
}

// CanonicalizePath resolves p to an absolute, symlink-resolved path. A
// relative path is resolved against base first when base is non-empty.
func CanonicalizePath(p, base string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("policy: empty path")
	}
	candidate := p
	if !filepath.IsAbs(candidate) && base != "" {
		candidate = filepath.Join(base, candidate)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("policy: resolve %q: %w", p, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("policy: canonicalize %q: %w", p, err)
	}
	return resolved, nil
}

// CanonicalizeWorkingDir canonicalizes a working directory, defaulting to the
// process's current directory when dir is empty.
func CanonicalizeWorkingDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("policy: getwd: %w", err)
		}
		return filepath.EvalSymlinks(wd)
	}
	return CanonicalizePath(dir, "")
}

// CanonicalizeImagePaths canonicalizes each image path, resolving relative
// entries against the already-canonicalized working directory.
func CanonicalizeImagePaths(paths []string, canonicalWorkingDir string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := CanonicalizePath(p, canonicalWorkingDir)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
