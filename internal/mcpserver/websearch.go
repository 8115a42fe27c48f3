package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-launch/internal/grok"
	"mcp-launch/internal/mcperr"
)

type webSearchArgs struct {
	Query      string `json:"query" jsonschema:"Clear, self-contained natural-language search query. When helpful, include constraints such as topic, time range, language, or domain."`
	Platform   string `json:"platform,omitempty" jsonschema:"Platforms to focus on searching, such as Twitter, GitHub, Reddit, etc."`
	MinResults int    `json:"min_results,omitempty" jsonschema:"Minimum number of results to return"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results to return"`
}

const (
	defaultMinResults = 3
	defaultMaxResults = 10
)

// resolveResultBounds fills each bound independently when omitted,
// matching WebSearchArgs's per-field serde defaults.
func resolveResultBounds(minResults, maxResults int) (int, int) {
	if minResults == 0 {
		minResults = defaultMinResults
	}
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}
	return minResults, maxResults
}

func registerWebSearch(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_search",
		Description: "Performs a third-party web search based on the given query and returns the results as a JSON string. The query should be a clear, self-contained natural-language search query.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args webSearchArgs) (*mcp.CallToolResult, any, error) {
		if !deps.GrokAvailable {
			return nil, nil, mcperr.Unavailablef("GROK_API_URL or GROK_API_KEY not configured. Set both environment variables to enable web search.")
		}
		if strings.TrimSpace(args.Query) == "" {
			return nil, nil, mcperr.Invalidf("query is required and must be a non-empty string")
		}

		minResults, maxResults := resolveResultBounds(args.MinResults, args.MaxResults)

		provider, err := grok.NewProvider(deps.GrokConfig, deps.Logger)
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.Internal, "Web search failed", err)
		}

		result, err := provider.Search(ctx, args.Query, args.Platform, minResults, maxResults)
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.Internal, "Web search failed", err)
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: result}}}, nil, nil
	})
}
