// Package roots negotiates MCP workspace roots with the client: Negotiate
// requests roots/list (bounded by a short timeout, since many clients don't
// support it) and stores the resulting directories for use as
// --include-directories on the Gemini CLI invocation. The server calls it
// lazily, once, from the first gemini tool call rather than from the
// initialized notification.
package roots

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ListTimeout bounds how long Negotiate waits for the client's roots/list
// response before giving up non-fatally.
const ListTimeout = 3 * time.Second

// Store holds the negotiated workspace roots, safe for concurrent reads
// from tool handlers and a single writer during initialization.
type Store struct {
	mu    sync.RWMutex
	roots []string
}

// Get returns a snapshot of the currently known roots.
func (s *Store) Get() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

func (s *Store) set(dirs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = dirs
}

// RootsLister abstracts the MCP peer's roots/list call so Negotiate can be
// tested without a real client connection.
type RootsLister interface {
	ListRoots(ctx context.Context) ([]string, error)
}

// Negotiate requests workspace roots from lister, applying ListTimeout, and
// stores any file:// URIs it resolves into s. Failures and timeouts are
// logged and otherwise ignored — roots/list is a best-effort negotiation.
func Negotiate(ctx context.Context, lister RootsLister, s *Store, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, ListTimeout)
	defer cancel()

	type result struct {
		uris []string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		uris, err := lister.ListRoots(ctx)
		done <- result{uris, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			logger.Warn().Err(r.err).Msg("failed to list roots from MCP client (non-fatal)")
			return
		}
		var dirs []string
		for _, uri := range r.uris {
			if p, ok := FileURIToPath(uri); ok {
				dirs = append(dirs, p)
			}
		}
		if len(dirs) > 0 {
			logger.Info().Int("count", len(dirs)).Msg("received workspace root(s) from MCP client")
			s.set(dirs)
		}
	case <-ctx.Done():
		logger.Warn().Msg("list_roots timed out (client may not support roots/list, non-fatal)")
	}
}

// FileURIToPath converts a file:// URI to a local filesystem path, handling
// both Unix (file:///home/user) and Windows (file:///D:/path) forms.
func FileURIToPath(uri string) (string, bool) {
	pathStr, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return "", false
	}
	if runtime.GOOS == "windows" {
		if stripped, ok := strings.CutPrefix(pathStr, "/"); ok && len(stripped) > 1 && stripped[1] == ':' {
			pathStr = stripped
		}
	}
	if pathStr == "" {
		return "", false
	}
	return pathStr, true
}
