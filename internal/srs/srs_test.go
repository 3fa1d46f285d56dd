// ABOUTME: Tests for SRS due-exercise computation
// ABOUTME: Covers interval growth, unattempted exercises and limit padding

package srs

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlingo/chatlingo/internal/store"
)

func setupService(t *testing.T, exerciseCount int) (*Service, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &store.User{ID: "user-1"}))
	require.NoError(t, s.CreateProfile(ctx, &store.Profile{UserID: "user-1", Hearts: store.HeartsMax, CurrentDifficulty: 1}))
	require.NoError(t, s.CreateSkill(ctx, &store.Skill{ID: "sk", Title: "Basics 1"}))
	lang := "es"
	require.NoError(t, s.CreateLesson(ctx, &store.Lesson{ID: "ls", SkillID: "sk", Lang: &lang}))
	for i := 0; i < exerciseCount; i++ {
		answer := "answer"
		require.NoError(t, s.CreateExercise(ctx, &store.Exercise{
			ID: fmt.Sprintf("ex-%d", i), LessonID: "ls",
			Type: store.ExerciseTypeTranslate, Prompt: "p", AnswerKey: &answer,
		}))
	}

	return NewService(s, nil), s
}

func addAttempts(t *testing.T, s *store.SQLiteStore, exerciseID string, at time.Time, results ...bool) {
	t.Helper()
	for i, correct := range results {
		require.NoError(t, s.CreateAttempt(context.Background(), &store.Attempt{
			UserID: "user-1", ExerciseID: exerciseID, IsCorrect: correct,
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestDueExercises_UnattemptedAreDue(t *testing.T) {
	svc, _ := setupService(t, 3)

	due, err := svc.DueExercises(context.Background(), "user-1", 20)
	require.NoError(t, err)
	assert.Len(t, due, 3)
}

func TestDueExercises_IntervalGrowth(t *testing.T) {
	svc, s := setupService(t, 1)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	// Two correct answers in a row: next review 4 days after the attempt
	addAttempts(t, s, "ex-0", now.Add(-2*24*time.Hour), true, true)

	due, err := svc.DueExercises(context.Background(), "user-1", 20)
	require.NoError(t, err)
	// Not yet due, but padded back in to fill the session
	require.Len(t, due, 1)

	// Move past the 4-day interval
	svc.SetClock(func() time.Time { return now.Add(3 * 24 * time.Hour) })
	due, err = svc.DueExercises(context.Background(), "user-1", 20)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestDueExercises_MissResetsInterval(t *testing.T) {
	svc, s := setupService(t, 1)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	// Most recent attempt incorrect: streak 0, due after 1 day
	addAttempts(t, s, "ex-0", now.Add(-25*time.Hour), true, false)

	due, err := svc.DueExercises(context.Background(), "user-1", 20)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestDueExercises_LimitApplies(t *testing.T) {
	svc, _ := setupService(t, 30)

	due, err := svc.DueExercises(context.Background(), "user-1", 5)
	require.NoError(t, err)
	assert.Len(t, due, 5)
}

func TestDueExercises_DefaultLimit(t *testing.T) {
	svc, _ := setupService(t, 30)

	due, err := svc.DueExercises(context.Background(), "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, due, 20)
}

func TestIntervalDays(t *testing.T) {
	assert.Equal(t, 1, intervalDays(0))
	assert.Equal(t, 2, intervalDays(1))
	assert.Equal(t, 4, intervalDays(2))
	assert.Equal(t, 16, intervalDays(4))
	assert.Equal(t, 32, intervalDays(5))
	assert.Equal(t, 32, intervalDays(9))
}

func TestCorrectRun(t *testing.T) {
	attempts := []*store.Attempt{
		{IsCorrect: true},
		{IsCorrect: true},
		{IsCorrect: false},
		{IsCorrect: true},
	}
	assert.Equal(t, 2, correctRun(attempts))
	assert.Equal(t, 0, correctRun([]*store.Attempt{{IsCorrect: false}}))
	assert.Equal(t, 0, correctRun(nil))
}
