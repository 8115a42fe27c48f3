package mcpserver

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-launch/internal/geminiimage"
	"mcp-launch/internal/mcperr"
)

type geminiImageArgs struct {
	Prompt string `json:"PROMPT" jsonschema:"Instruction describing the image to generate"`
	Model  string `json:"model,omitempty" jsonschema:"The Gemini model to use for image generation. Defaults to GEMINI_IMAGE_MODEL or gemini-2.5-flash-image"`
}

func registerGeminiImage(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "gemini_image",
		Description: "Generates one or more images (and optional commentary text) from a natural-language prompt via the Gemini generateContent API.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args geminiImageArgs) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(args.Prompt) == "" {
			return nil, nil, mcperr.Invalidf("PROMPT is required and must be a non-empty, non-whitespace string")
		}
		if deps.GeminiImage.APIKey == "" {
			return nil, nil, mcperr.Unavailablef("GEMINI_IMAGE_API_KEY not configured. Set the environment variable to enable gemini_image.")
		}

		cfg := deps.GeminiImage
		if args.Model != "" {
			cfg.Model = args.Model
		}
		if cfg.Client == nil {
			cfg.Client = &http.Client{Timeout: 120 * time.Second}
		}

		result, err := geminiimage.Generate(ctx, cfg, args.Prompt)
		if err != nil {
			return nil, nil, mcperr.Wrap(mcperr.Internal, "Failed to generate image", err)
		}

		content := make([]mcp.Content, 0, len(result.Images)+1)
		if result.Text != "" {
			content = append(content, &mcp.TextContent{Text: result.Text})
		}
		for _, img := range result.Images {
			content = append(content, &mcp.ImageContent{Data: img.Data, MIMEType: img.MimeType})
		}
		if len(content) == 0 {
			content = append(content, &mcp.TextContent{Text: "gemini_image returned no content"})
		}

		return &mcp.CallToolResult{Content: content}, nil, nil
	})
}

// LoadGeminiImageConfig reads the GEMINI_* image-generation environment
// variables, matching gemini_image_api.rs's configuration surface.
func LoadGeminiImageConfig() geminiimage.Config {
	model := strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL"))
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	apiURL := strings.TrimSpace(os.Getenv("GEMINI_API_URL"))
	if apiURL == "" {
		apiURL = "https://generativelanguage.googleapis.com"
	}
	return geminiimage.Config{
		APIURL: apiURL,
		APIKey: os.Getenv("GEMINI_IMAGE_API_KEY"),
		Model:  model,
	}
}
