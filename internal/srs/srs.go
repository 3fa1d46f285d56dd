// ABOUTME: Spaced-repetition review scheduling over attempt history
// ABOUTME: Review intervals double with each correct answer in a row, capped at 32 days

package srs

import (
	"context"
	"log/slog"
	"time"

	"github.com/chatlingo/chatlingo/internal/store"
)

// maxIntervalDays caps the review interval growth.
const maxIntervalDays = 32

// recentAttemptWindow is how many attempts back the correct run is computed over.
const recentAttemptWindow = 10

// Service computes due review items from attempt history.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an SRS service.
func NewService(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		logger: logger.With("component", "srs"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Test helper.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// DueExercises returns up to limit exercises due for review.
//
// An exercise's interval is 2^streak days (capped) where streak is the run of
// correct answers ending at the most recent attempt. Exercises never
// attempted are due immediately. When fewer than limit exercises are due the
// result is padded with not-yet-due exercises so a review session always has
// material.
func (s *Service) DueExercises(ctx context.Context, userID string, limit int) ([]*store.Exercise, error) {
	if limit <= 0 {
		limit = 20
	}

	all, err := s.store.ListExercises(ctx)
	if err != nil {
		return nil, err
	}

	today := truncateToDay(s.now())
	var due []*store.Exercise
	dueIDs := make(map[string]bool)

	for _, ex := range all {
		if len(due) >= limit {
			break
		}

		attempts, err := s.store.RecentAttempts(ctx, userID, ex.ID, recentAttemptWindow)
		if err != nil {
			return nil, err
		}
		if len(attempts) == 0 {
			due = append(due, ex)
			dueIDs[ex.ID] = true
			continue
		}

		streak := correctRun(attempts)
		interval := intervalDays(streak)
		dueDate := truncateToDay(attempts[0].CreatedAt).AddDate(0, 0, interval)
		if !dueDate.After(today) {
			due = append(due, ex)
			dueIDs[ex.ID] = true
		}
	}

	// Pad with non-due exercises so the session has material
	for _, ex := range all {
		if len(due) >= limit {
			break
		}
		if !dueIDs[ex.ID] {
			due = append(due, ex)
		}
	}

	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// correctRun counts correct answers from the most recent attempt backwards.
func correctRun(attempts []*store.Attempt) int {
	run := 0
	for _, a := range attempts {
		if !a.IsCorrect {
			break
		}
		run++
	}
	return run
}

// intervalDays returns 2^streak days, capped at maxIntervalDays.
func intervalDays(streak int) int {
	days := 1
	for i := 0; i < streak; i++ {
		days *= 2
		if days >= maxIntervalDays {
			return maxIntervalDays
		}
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
