// ABOUTME: Gamification operations: status lookup and language selection
// ABOUTME: Mirrors the backend's /gamification endpoints

package client

import (
	"context"
	"net/url"
)

// GamificationStatus is the user's current progress snapshot.
type GamificationStatus struct {
	XP               int     `json:"xp"`
	Hearts           int     `json:"hearts"`
	StreakCount      int     `json:"streak_count"`
	DailyGoalXP      int     `json:"daily_goal_xp"`
	WeeklyXP         int     `json:"weekly_xp"`
	LearningLanguage *string `json:"learning_language,omitempty"`
	NativeLanguage   *string `json:"native_language,omitempty"`
}

// GamificationStatus fetches XP, hearts, streak and goal progress.
func (c *Client) GamificationStatus(ctx context.Context, userID string) (*GamificationStatus, error) {
	var resp GamificationStatus
	q := url.Values{"user_id": {userID}}
	if err := c.get(ctx, "/gamification/status", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetLearningLanguage sets the user's learning language.
func (c *Client) SetLearningLanguage(ctx context.Context, userID, language string) error {
	q := url.Values{"user_id": {userID}, "learning_language": {language}}
	return c.post(ctx, "/gamification/language", q, struct{}{}, nil)
}
