package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// sessionRootsLister adapts one MCP client session to internal/roots's
// RootsLister interface, so roots.Negotiate can be driven from the
// server's session-initialized lifecycle without internal/roots importing
// the MCP SDK directly.
type sessionRootsLister struct {
	session *mcp.ServerSession
}

func (l sessionRootsLister) ListRoots(ctx context.Context) ([]string, error) {
	result, err := l.session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(result.Roots))
	for _, r := range result.Roots {
		uris = append(uris, r.URI)
	}
	return uris, nil
}
