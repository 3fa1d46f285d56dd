// ABOUTME: Image tools: black-and-white conversion and backend image analysis
// ABOUTME: Conversion runs locally, analysis proxies to the backend

package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/chatlingo/chatlingo/internal/mcp"
	"github.com/chatlingo/chatlingo/internal/media"
)

func blackAndWhiteTool(deps Deps) *mcp.Tool {
	sideEffects := "The image will be processed and returned in a black and white format."
	desc := RichToolDescription{
		Description: "Convert an image to black and white.",
		UseWhen:     "Use this tool when the user provides an image and requests it to be converted to black and white.",
		SideEffects: &sideEffects,
	}

	return &mcp.Tool{
		Name:        "make_img_black_and_white",
		Description: desc.String(),
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"image_data": {"type": "string", "description": "Base64-encoded image data to convert to black and white"}
			},
			"required": ["image_data"]
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			var in struct {
				ImageData string `json:"image_data"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.ImageData == "" {
				return nil, mcp.InvalidArguments("image_data is required")
			}

			pngBytes, err := media.Grayscale(in.ImageData)
			if err != nil {
				return nil, mcp.InvalidArguments("invalid image data: %v", err)
			}

			// Best effort usage tracking
			if err := deps.Backend.LogMediaEvent(ctx, nil, "image_bw_tool", map[string]any{"size": len(in.ImageData)}); err != nil {
				deps.Logger.Debug("media event logging failed", "error", err)
			}

			return &mcp.MCPCallToolResult{
				Content: []mcp.MCPContent{
					mcp.ImageContent(base64.StdEncoding.EncodeToString(pngBytes), "image/png"),
				},
			}, nil
		},
	}
}

func imageAnalyzeTool(deps Deps) *mcp.Tool {
	return &mcp.Tool{
		Name:        "image_analyze",
		Description: "Analyze a user-provided image (base64) for OCR/metadata; returns suggested replies.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"image_data": {"type": "string", "description": "Base64-encoded image to analyze"}
			},
			"required": ["image_data"]
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			var in struct {
				ImageData string `json:"image_data"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.ImageData == "" {
				return nil, mcp.InvalidArguments("image_data is required")
			}

			analysis, err := deps.Backend.AnalyzeImage(ctx, in.ImageData)
			if err != nil {
				return backendErrorResult(err), nil
			}

			if err := deps.Backend.LogMediaEvent(ctx, nil, "image_analyze_tool", map[string]any{"size": len(in.ImageData)}); err != nil {
				deps.Logger.Debug("media event logging failed", "error", err)
			}

			body, err := json.Marshal(analysis)
			if err != nil {
				return nil, err
			}
			return textResult(withReplies(string(body), []suggestion{
				{Title: "Next", ID: "next"},
				{Title: "Explain", ID: "explain"},
				{Title: "Try another", ID: "try_another"},
			})), nil
		},
	}
}
