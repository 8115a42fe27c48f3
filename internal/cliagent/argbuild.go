// Package cliagent orchestrates the codex and gemini CLI agents: argument
// construction, subprocess lifecycle (spawn, timeout, tree-kill), and
// streaming-JSON parsing of each agent's stdout/stderr.
package cliagent

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const maxCLIPromptLen = 800

// specialChars are the shell-unsafe characters that force stdin-mode prompt
// delivery even when the prompt is under the length limit.
var specialChars = []rune{'\n', '\\', '"', '\'', '`', '$', '%', '^', '!', '&', '|', '<', '>', '(', ')'}

// needsStdinMode reports whether prompt must be piped via stdin rather than
// passed as a trailing positional argument.
func needsStdinMode(prompt string) bool {
	if len(prompt) > maxCLIPromptLen {
		return true
	}
	for _, r := range prompt {
		for _, special := range specialChars {
			if r == special {
				return true
			}
		}
	}
	return false
}

// resolveBinary returns the env-var override if set, otherwise defaultName.
func resolveBinary(envVar, defaultName string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultName
}

// wrapForWindowsShell wraps program/args in a ComSpec invocation when
// running on Windows and program ends in .cmd or .bat, matching the
// original's "%ComSpec% /d /s /c <bin>" indirection for batch-script shims.
func wrapForWindowsShell(program string, args []string) (string, []string) {
	if runtime.GOOS != "windows" {
		return program, args
	}
	lower := strings.ToLower(program)
	if !strings.HasSuffix(lower, ".cmd") && !strings.HasSuffix(lower, ".bat") {
		return program, args
	}
	comspec := os.Getenv("ComSpec")
	if comspec == "" {
		comspec = "cmd.exe"
	}
	wrapped := append([]string{"/d", "/s", "/c", program}, args...)
	return comspec, wrapped
}

func newCommand(program string, args []string) *exec.Cmd {
	realProgram, realArgs := wrapForWindowsShell(program, args)
	return exec.Command(realProgram, realArgs...)
}
