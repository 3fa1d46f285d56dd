// ABOUTME: WhatsApp Cloud API client for sending interactive reply buttons
// ABOUTME: Optional integration, only active when token and phone id are set

package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxButtons is the Cloud API limit on reply buttons per message.
const maxButtons = 3

// ErrNotConfigured is returned when the client has no token or phone number id.
var ErrNotConfigured = errors.New("whatsapp client not configured")

// Reply is one quick-reply button.
type Reply struct {
	ID    string
	Title string
}

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	token         string
	phoneNumberID string
	apiVersion    string
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
}

func NewClient(token, phoneNumberID, apiVersion string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		token:         token,
		phoneNumberID: phoneNumberID,
		apiVersion:    apiVersion,
		baseURL:       "https://graph.facebook.com",
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		logger:        logger.With("component", "whatsapp"),
	}
}

// SetBaseURL overrides the Graph API base URL, used in tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// IsConfigured reports whether the client has credentials to send messages.
func (c *Client) IsConfigured() bool {
	return c.token != "" && c.phoneNumberID != ""
}

// SendQuickReplies sends an interactive button message. At most three
// buttons are sent; extras are dropped.
func (c *Client) SendQuickReplies(ctx context.Context, to, body string, replies []Reply) (map[string]any, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if len(replies) > maxButtons {
		replies = replies[:maxButtons]
	}
	buttons := make([]map[string]any, 0, len(replies))
	for _, r := range replies {
		buttons = append(buttons, map[string]any{
			"type":  "reply",
			"reply": map[string]string{"id": r.ID, "title": r.Title},
		})
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type": "button",
			"body": map[string]string{"text": body},
			"action": map[string]any{
				"buttons": buttons,
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("cloud api error", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("cloud api returned %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return result, nil
}
