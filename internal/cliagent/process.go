package cliagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/sync/errgroup"

	"mcp-launch/internal/proctree"
)

// runConfig parameterizes one subprocess invocation. stdoutDrain is agent-
// specific (codex and gemini parse very differently); stdinContent/useStdin
// and stderrCap are the only other points of variation the two agents need.
type runConfig struct {
	program      string
	args         []string
	stdinContent string
	useStdin     bool
	stderrCap    int
	stdoutDrain  func(r io.Reader, kill func()) error
}

// procResult reports what happened after the subprocess's three concurrent
// drains (stdin write, stdout parse, stderr capture) all joined.
type procResult struct {
	stderr    string
	waitErr   error
	ctxCanceled bool
}

// runProcess spawns cfg.program, assigns it to a tree-kill primitive, and
// drives the structured-concurrency trio (stdin writer, stdout parser,
// stderr capturer) via errgroup, joining all three before waiting on exit.
// Cancelling ctx (including by timeout) terminates the whole process tree,
// and so does a fatal error in the stdin writer or the stdout parser, which
// ends the remaining drains at EOF.
func runProcess(ctx context.Context, cfg runConfig) (procResult, error) {
	cmd := newCommand(cfg.program, cfg.args)
	proctree.Prepare(cmd)

	var stdinPipe io.WriteCloser
	if cfg.useStdin {
		p, err := cmd.StdinPipe()
		if err != nil {
			return procResult{}, fmt.Errorf("cliagent: stdin pipe: %w", err)
		}
		stdinPipe = p
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return procResult{}, fmt.Errorf("cliagent: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return procResult{}, fmt.Errorf("cliagent: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return procResult{}, fmt.Errorf("cliagent: spawn: %w", err)
	}

	killer, _ := proctree.New(cmd)

	stopWatch := make(chan struct{})
	watchDone := make(chan struct{})
	ctxCanceled := false
	go func() {
		defer close(watchDone)
		select {
		case <-ctx.Done():
			ctxCanceled = true
			killer.Terminate()
		case <-stopWatch:
		}
	}()

	var g errgroup.Group

	if cfg.useStdin {
		g.Go(func() error {
			defer stdinPipe.Close()
			_, werr := io.WriteString(stdinPipe, cfg.stdinContent)
			if werr != nil && !isBrokenPipe(werr) {
				killer.Terminate()
				return fmt.Errorf("cliagent: write prompt to stdin: %w", werr)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := cfg.stdoutDrain(stdoutPipe, killer.Terminate); err != nil {
			killer.Terminate()
			return err
		}
		return nil
	})

	var stderrOutput string
	g.Go(func() error {
		stderrOutput = drainStderr(stderrPipe, cfg.stderrCap)
		return nil
	})

	groupErr := g.Wait()
	close(stopWatch)
	<-watchDone
	killer.Close()

	waitErr := cmd.Wait()

	return procResult{stderr: stderrOutput, waitErr: waitErr, ctxCanceled: ctxCanceled}, groupErr
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}

// drainStderr accumulates stderr up to capBytes, appending a truncation
// marker once the cap is exceeded rather than growing unbounded.
func drainStderr(r io.Reader, capBytes int) string {
	lr := newUnboundedLineReader(r)
	var out []byte
	truncated := false
	for {
		line, eof := lr.next()
		if len(line) == 0 && eof {
			break
		}
		if !truncated {
			if len(out) > 0 {
				out = append(out, '\n')
			}
			remaining := capBytes - len(out)
			if remaining <= 0 {
				truncated = true
			} else if len(line) > remaining {
				out = append(out, line[:remaining]...)
				truncated = true
			} else {
				out = append(out, line...)
			}
		}
		if eof {
			break
		}
	}
	if truncated {
		if len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, []byte("[... stderr truncated due to size limit ...]")...)
	}
	return string(out)
}
