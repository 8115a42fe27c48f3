package cliagent

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainStderrAccumulatesLines(t *testing.T) {
	out := drainStderr(strings.NewReader("line one\nline two\n"), 1024)
	assert.Equal(t, "line one\nline two", out)
}

func TestDrainStderrTruncatesAtCap(t *testing.T) {
	out := drainStderr(strings.NewReader("0123456789\n0123456789\n"), 12)
	assert.Contains(t, out, "[... stderr truncated due to size limit ...]")
	assert.True(t, len(out) < 200)
}

func TestRunProcessCapturesStdoutAndExitStatus(t *testing.T) {
	var lines []string
	cfg := runConfig{
		program: "/bin/sh",
		args:    []string{"-c", "echo hello; echo world 1>&2"},
		stdoutDrain: func(r io.Reader, _ func()) error {
			lr := newUnboundedLineReader(r)
			for {
				line, eof := lr.next()
				if len(line) > 0 {
					lines = append(lines, string(line))
				}
				if eof {
					return nil
				}
			}
		},
		stderrCap: 1024,
	}
	res, err := runProcess(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, res.waitErr)
	assert.Equal(t, []string{"hello"}, lines)
	assert.Equal(t, "world", res.stderr)
}

func TestRunProcessWritesStdinWhenRequested(t *testing.T) {
	var gotStdout bytes.Buffer
	cfg := runConfig{
		program:      "/bin/cat",
		stdinContent: "piped input\n",
		useStdin:     true,
		stdoutDrain: func(r io.Reader, _ func()) error {
			_, err := io.Copy(&gotStdout, r)
			return err
		},
		stderrCap: 1024,
	}
	res, err := runProcess(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, res.waitErr)
	assert.Equal(t, "piped input\n", gotStdout.String())
}

func TestRunProcessKillsOnContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cfg := runConfig{
		program: "/bin/sh",
		args:    []string{"-c", "sleep 5"},
		stdoutDrain: func(r io.Reader, _ func()) error {
			_, err := io.Copy(io.Discard, r)
			return err
		},
		stderrCap: 1024,
	}
	res, err := runProcess(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, res.ctxCanceled)
	assert.Error(t, res.waitErr)
}
