// ABOUTME: Session operations: start a practice session and submit answers
// ABOUTME: Mirrors the backend's /sessions endpoints

package client

import "context"

// Exercise is one exercise as handed out by the backend.
type Exercise struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Prompt     string   `json:"prompt"`
	Choices    []string `json:"choices,omitempty"`
	Difficulty int      `json:"difficulty"`
}

// SessionStart is the result of starting a practice session.
type SessionStart struct {
	Exercises                 []Exercise `json:"exercises"`
	RequiresLanguageSelection bool       `json:"requires_language_selection"`
	SuggestedLanguages        []string   `json:"suggested_languages,omitempty"`
}

// SubmitResult is the graded outcome of one answer.
type SubmitResult struct {
	IsCorrect   bool   `json:"is_correct"`
	AwardedXP   int    `json:"awarded_xp"`
	Feedback    string `json:"feedback"`
	NewXP       int    `json:"new_xp"`
	Hearts      int    `json:"hearts"`
	StreakCount int    `json:"streak_count"`
}

type sessionStartRequest struct {
	UserID           string  `json:"user_id"`
	LessonID         *string `json:"lesson_id,omitempty"`
	LearningLanguage *string `json:"learning_language,omitempty"`
	Limit            int     `json:"limit,omitempty"`
}

type submitAnswerRequest struct {
	UserID     string `json:"user_id"`
	ExerciseID string `json:"exercise_id"`
	Answer     string `json:"answer"`
	TimeMS     *int   `json:"time_ms,omitempty"`
}

// StartSession starts a practice session for the user. lessonID and
// learningLanguage may be nil.
func (c *Client) StartSession(ctx context.Context, userID string, lessonID, learningLanguage *string) (*SessionStart, error) {
	var resp SessionStart
	err := c.post(ctx, "/sessions/start", nil, sessionStartRequest{
		UserID:           userID,
		LessonID:         lessonID,
		LearningLanguage: learningLanguage,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitAnswer grades one answer and returns the updated profile numbers.
func (c *Client) SubmitAnswer(ctx context.Context, userID, exerciseID, answer string, timeMS *int) (*SubmitResult, error) {
	var resp SubmitResult
	err := c.post(ctx, "/sessions/submit", nil, submitAnswerRequest{
		UserID:     userID,
		ExerciseID: exerciseID,
		Answer:     answer,
		TimeMS:     timeMS,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
