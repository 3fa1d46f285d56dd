// ABOUTME: Progress tools: gamification status and due SRS vocab
// ABOUTME: Thin proxies that return backend JSON with suggested replies

package tools

import (
	"context"
	"encoding/json"

	"github.com/chatlingo/chatlingo/internal/mcp"
)

func gamificationStatusTool(deps Deps) *mcp.Tool {
	return &mcp.Tool{
		Name:        "gamification_status",
		Description: "Fetch daily goals and gamification status (xp, hearts, streak, quests)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"user_id": {"type": "string", "description": "User identifier"}
			},
			"required": ["user_id"]
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			var in struct {
				UserID string `json:"user_id"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.UserID == "" {
				return nil, mcp.InvalidArguments("user_id is required")
			}

			status, err := deps.Backend.GamificationStatus(ctx, in.UserID)
			if err != nil {
				return backendErrorResult(err), nil
			}

			body, err := json.Marshal(status)
			if err != nil {
				return nil, err
			}
			return textResult(withReplies(string(body), []suggestion{
				{Title: "Daily goal", ID: "daily_goal"},
				{Title: "Start session", ID: "start_session"},
				{Title: "Due cards", ID: "due_cards"},
			})), nil
		},
	}
}

func srsDueTool(deps Deps) *mcp.Tool {
	return &mcp.Tool{
		Name:        "srs_due",
		Description: "Get due SRS vocab items for the user",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"user_id": {"type": "string", "description": "User identifier"},
				"limit": {"type": "integer", "description": "Optional limit of due items"}
			},
			"required": ["user_id"]
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			var in struct {
				UserID string `json:"user_id"`
				Limit  int    `json:"limit"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.UserID == "" {
				return nil, mcp.InvalidArguments("user_id is required")
			}
			if in.Limit <= 0 {
				in.Limit = 20
			}

			exercises, err := deps.Backend.SRSDue(ctx, in.UserID, in.Limit)
			if err != nil {
				return backendErrorResult(err), nil
			}

			body, err := json.Marshal(map[string]any{"exercises": exercises})
			if err != nil {
				return nil, err
			}
			return textResult(withReplies(string(body), []suggestion{
				{Title: "Start review", ID: "start_review"},
				{Title: "Skip", ID: "skip"},
				{Title: "Back", ID: "back"},
			})), nil
		},
	}
}
