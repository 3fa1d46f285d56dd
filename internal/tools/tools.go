// ABOUTME: Tool registration for the chatlingo MCP server
// ABOUTME: Each tool proxies to the backend or processes media locally

package tools

import (
	"encoding/json"
	"log/slog"

	"github.com/chatlingo/chatlingo/internal/client"
	"github.com/chatlingo/chatlingo/internal/mcp"
)

// Deps holds what the tool handlers need.
type Deps struct {
	Backend *client.Client
	// MyNumber is the phone number returned by the validate tool, in
	// {country_code}{number} format.
	MyNumber string
	Logger   *slog.Logger
}

// RichToolDescription is the structured description format the chat platform
// understands. Marshalled to JSON and used as the tool description.
type RichToolDescription struct {
	Description string  `json:"description"`
	UseWhen     string  `json:"use_when"`
	SideEffects *string `json:"side_effects,omitempty"`
}

func (d RichToolDescription) String() string {
	data, err := json.Marshal(d)
	if err != nil {
		return d.Description
	}
	return string(data)
}

// Register adds all chatlingo tools to the registry.
func Register(registry *mcp.Registry, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With("component", "tools")

	registry.Register(validateTool(deps))
	registry.Register(blackAndWhiteTool(deps))
	registry.Register(sessionStartTool(deps))
	registry.Register(submitAnswerTool(deps))
	registry.Register(gamificationStatusTool(deps))
	registry.Register(srsDueTool(deps))
	registry.Register(imageAnalyzeTool(deps))
	registry.Register(transcribeAudioTool(deps))
}

// textResult wraps plain text in a tool result.
func textResult(text string) *mcp.MCPCallToolResult {
	return &mcp.MCPCallToolResult{Content: []mcp.MCPContent{mcp.TextContent(text)}}
}

// backendErrorResult reports a backend failure as a tool-level error so the
// message reaches the model instead of being masked by the transport.
func backendErrorResult(err error) *mcp.MCPCallToolResult {
	return &mcp.MCPCallToolResult{
		Content: []mcp.MCPContent{mcp.TextContent("Backend error: " + err.Error())},
		IsError: true,
	}
}
