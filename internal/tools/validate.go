// ABOUTME: The validate tool required by the chat platform handshake
// ABOUTME: Returns the owner's phone number to prove server ownership

package tools

import (
	"context"
	"encoding/json"

	"github.com/chatlingo/chatlingo/internal/mcp"
)

func validateTool(deps Deps) *mcp.Tool {
	return &mcp.Tool{
		Name:        "validate",
		Description: "Validate server ownership by returning the owner's phone number.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			return textResult(deps.MyNumber), nil
		},
	}
}
