// ABOUTME: Tests for the practice session engine
// ABOUTME: Covers language selection, grading side effects and difficulty

package session

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlingo/chatlingo/internal/gamification"
	"github.com/chatlingo/chatlingo/internal/store"
)

func setupService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.CreateSkill(ctx, &store.Skill{ID: "sk", Title: "Basics 1"}))
	lang := "es"
	require.NoError(t, s.CreateLesson(ctx, &store.Lesson{ID: "ls", SkillID: "sk", Lang: &lang}))
	for i := 0; i < 5; i++ {
		answer := "hola"
		require.NoError(t, s.CreateExercise(ctx, &store.Exercise{
			ID: fmt.Sprintf("ex-%d", i), LessonID: "ls",
			Type: store.ExerciseTypeTranslate, Prompt: "Hello", AnswerKey: &answer,
			Difficulty: 1,
		}))
	}

	game := gamification.NewService(s, nil)
	return NewService(s, game, nil), s
}

func TestStart_RequiresLanguageSelection(t *testing.T) {
	svc, _ := setupService(t)

	res, err := svc.Start(context.Background(), "user-1", nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, res.RequiresLanguageSelection)
	assert.Empty(t, res.Exercises)
	assert.Equal(t, []string{"de", "es", "fr", "it"}, res.SuggestedLanguages)
}

func TestStart_LanguageProvided(t *testing.T) {
	svc, s := setupService(t)
	lang := "es"

	res, err := svc.Start(context.Background(), "user-1", nil, &lang, 0)
	require.NoError(t, err)
	assert.False(t, res.RequiresLanguageSelection)
	assert.NotEmpty(t, res.Exercises)

	// Language persisted: second start needs no language argument
	profile, err := s.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile.LearningLanguage)
	assert.Equal(t, "es", *profile.LearningLanguage)

	res, err = svc.Start(context.Background(), "user-1", nil, nil, 0)
	require.NoError(t, err)
	assert.False(t, res.RequiresLanguageSelection)
}

func TestStart_ByLesson(t *testing.T) {
	svc, _ := setupService(t)
	lang := "es"
	lesson := "ls"

	res, err := svc.Start(context.Background(), "user-1", &lesson, &lang, 3)
	require.NoError(t, err)
	assert.Len(t, res.Exercises, 3)
}

func TestSubmit_CorrectAnswer(t *testing.T) {
	svc, _ := setupService(t)

	res, err := svc.Submit(context.Background(), "user-1", "ex-0", "Hola", 1200)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, gamification.CorrectAnswerXP, res.AwardedXP)
	assert.Equal(t, gamification.CorrectAnswerXP, res.NewXP)
	assert.Equal(t, store.HeartsMax, res.Hearts)
	assert.Equal(t, 1, res.StreakCount)
}

func TestSubmit_WrongAnswerCostsHeart(t *testing.T) {
	svc, _ := setupService(t)

	res, err := svc.Submit(context.Background(), "user-1", "ex-0", "bonjour", 1200)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0, res.AwardedXP)
	assert.Equal(t, store.HeartsMax-1, res.Hearts)
}

func TestSubmit_RecordsAttemptLevel(t *testing.T) {
	svc, s := setupService(t)

	_, err := svc.Submit(context.Background(), "user-1", "ex-0", "hola", 900)
	require.NoError(t, err)

	attempts, err := s.RecentAttempts(context.Background(), "user-1", "ex-0", 1)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.NotNil(t, attempts[0].Level)
	assert.Equal(t, 1, *attempts[0].Level)
}

func TestSubmit_UnknownExercise(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Submit(context.Background(), "user-1", "nope", "hola", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmit_DifficultyPromotion(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, "user-1", fmt.Sprintf("ex-%d", i), "hola", 0)
		require.NoError(t, err)
	}

	profile, err := s.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.CurrentDifficulty)
	assert.Equal(t, 0, profile.CorrectStreak)
}

func TestSubmit_MissDemotes(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "user-1", "ex-0", "hola", 0)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "user-1", "ex-1", "wrong answer", 0)
	require.NoError(t, err)

	profile, err := s.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	// Already at the floor, stays at 1 and the run resets
	assert.Equal(t, 1, profile.CurrentDifficulty)
	assert.Equal(t, 0, profile.CorrectStreak)
}

func TestAdjustDifficulty_Bounds(t *testing.T) {
	svc, _ := setupService(t)

	p := &store.Profile{CurrentDifficulty: 5, CorrectStreak: 2}
	svc.adjustDifficulty(p, true)
	assert.Equal(t, 5, p.CurrentDifficulty)

	p = &store.Profile{CurrentDifficulty: 1}
	svc.adjustDifficulty(p, false)
	assert.Equal(t, 1, p.CurrentDifficulty)
}
