package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-launch/internal/grok"
)

type getConfigInfoArgs struct{}

func registerGetConfigInfo(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_config_info",
		Description: "Returns the current Grok Search MCP server configuration information and tests the connection. Useful for verifying environment variables, testing API connectivity, and debugging configuration issues.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args getConfigInfoArgs) (*mcp.CallToolResult, any, error) {
		info := deps.GrokConfig.GetConfigInfo()

		var connectionTest map[string]any
		if deps.GrokAvailable {
			provider, err := grok.NewProvider(deps.GrokConfig, deps.Logger)
			if err != nil {
				connectionTest = map[string]any{
					"status":  "❌ Connection failed",
					"message": fmt.Sprintf("Error: %s", err),
				}
			} else if result, err := provider.TestConnection(ctx); err != nil {
				connectionTest = map[string]any{
					"status":  "❌ Connection failed",
					"message": fmt.Sprintf("Error: %s", err),
				}
			} else {
				connectionTest = result
			}
		} else {
			connectionTest = map[string]any{
				"status":  "❌ Configuration error",
				"message": "GROK_API_URL or GROK_API_KEY not set",
			}
		}
		info["connection_test"] = connectionTest

		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: encodeJSON(info)}}}, nil, nil
	})
}
