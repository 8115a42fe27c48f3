// Package mcpserver registers the gateway's MCP tool catalog (gemini,
// gemini_image, codex, web_search, web_fetch, get_config_info) against
// github.com/modelcontextprotocol/go-sdk/mcp, wiring each handler to
// internal/cliagent, internal/grok, internal/geminiimage, internal/policy,
// internal/capabilities, and internal/roots.
package mcpserver

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"mcp-launch/internal/capabilities"
	"mcp-launch/internal/geminiimage"
	"mcp-launch/internal/grok"
	"mcp-launch/internal/roots"
)

// Deps bundles everything the tool handlers need, built once at startup.
type Deps struct {
	Caps          capabilities.Capabilities
	Roots         *roots.Store
	GrokConfig    grok.Config
	GrokAvailable bool
	GeminiImage   geminiimage.Config
	Logger        zerolog.Logger

	// rootsOnce guards a single lazy roots/list negotiation. Only the gemini
	// handler, the one consumer of workspace roots, triggers it, on its
	// first invocation.
	rootsOnce sync.Once
}

// negotiateRoots runs the roots/list negotiation exactly once per server
// lifetime, using the session attached to req. It is a no-op past the first
// call and safe to call from every handler.
func (d *Deps) negotiateRoots(ctx context.Context, session *mcp.ServerSession) {
	d.rootsOnce.Do(func() {
		if session == nil {
			return
		}
		roots.Negotiate(ctx, sessionRootsLister{session: session}, d.Roots, d.Logger)
	})
}

// NewServer builds an mcp.Server advertising tool listing only (no
// resources/prompts), matching spec.md §6's tool catalog.
func NewServer(name, version string, logger zerolog.Logger) *mcp.Server {
	return mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, &mcp.ServerOptions{
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{
				ListChanged: false,
			},
		},
	})
}

// Register adds the full tool catalog to server.
func Register(server *mcp.Server, deps *Deps) {
	registerGemini(server, deps)
	registerGeminiImage(server, deps)
	registerCodex(server, deps)
	registerWebSearch(server, deps)
	registerWebFetch(server, deps)
	registerGetConfigInfo(server, deps)
}

func boolPtr(b bool) *bool { return &b }
