package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-launch/internal/grok"
	"mcp-launch/internal/mcperr"
)

type webFetchArgs struct {
	URL string `json:"url" jsonschema:"A valid HTTP/HTTPS web address pointing to the target page"`
}

func registerWebFetch(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_fetch",
		Description: "Fetches and extracts the complete content from a specified URL and returns it as a structured Markdown document. The URL should be a valid HTTP/HTTPS web address.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args webFetchArgs) (*mcp.CallToolResult, any, error) {
		if !deps.GrokAvailable {
			return nil, nil, mcperr.Unavailablef("GROK_API_URL or GROK_API_KEY not configured. Set both environment variables to enable web fetch.")
		}
		if strings.TrimSpace(args.URL) == "" {
			return nil, nil, mcperr.Invalidf("url is required and must be a non-empty string")
		}

		provider, err := grok.NewProvider(deps.GrokConfig, deps.Logger)
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.Internal, "Web fetch failed", err)
		}

		result, err := provider.Fetch(ctx, args.URL)
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.Internal, "Web fetch failed", err)
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: result}}}, nil, nil
	})
}
