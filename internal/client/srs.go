// ABOUTME: SRS operations: fetch exercises due for spaced-repetition review
// ABOUTME: Mirrors the backend's /srs endpoints

package client

import (
	"context"
	"net/url"
	"strconv"
)

type srsDueResponse struct {
	Exercises []Exercise `json:"exercises"`
}

// SRSDue returns exercises due for review, padded with upcoming ones up to
// limit. limit <= 0 uses the backend default.
func (c *Client) SRSDue(ctx context.Context, userID string, limit int) ([]Exercise, error) {
	q := url.Values{"user_id": {userID}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp srsDueResponse
	if err := c.get(ctx, "/srs/due", q, &resp); err != nil {
		return nil, err
	}
	return resp.Exercises, nil
}
