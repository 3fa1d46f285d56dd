// ABOUTME: The transcribe_audio tool for voice notes
// ABOUTME: Proxies base64 audio to the backend transcription endpoint

package tools

import (
	"context"
	"encoding/json"

	"github.com/chatlingo/chatlingo/internal/mcp"
)

func transcribeAudioTool(deps Deps) *mcp.Tool {
	return &mcp.Tool{
		Name:        "transcribe_audio",
		Description: "Transcribe a voice note (base64 audio) and return text with suggested actions.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"audio_data": {"type": "string", "description": "Base64-encoded audio data"},
				"mime_type": {"type": "string", "description": "Optional audio MIME type e.g. audio/ogg"}
			},
			"required": ["audio_data"]
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			var in struct {
				AudioData string  `json:"audio_data"`
				MimeType  *string `json:"mime_type"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.AudioData == "" {
				return nil, mcp.InvalidArguments("audio_data is required")
			}

			tr, err := deps.Backend.TranscribeAudio(ctx, in.AudioData, in.MimeType)
			if err != nil {
				return backendErrorResult(err), nil
			}

			meta := map[string]any{"size": len(in.AudioData)}
			if in.MimeType != nil {
				meta["mime_type"] = *in.MimeType
			}
			if err := deps.Backend.LogMediaEvent(ctx, nil, "audio_transcribe_tool", meta); err != nil {
				deps.Logger.Debug("media event logging failed", "error", err)
			}

			body, err := json.Marshal(tr)
			if err != nil {
				return nil, err
			}
			return textResult(withReplies(string(body), []suggestion{
				{Title: "Play again", ID: "play_again"},
				{Title: "Slower", ID: "slower"},
				{Title: "Next", ID: "next"},
			})), nil
		},
	}
}
