// ABOUTME: Practice session engine: exercise selection and answer submission
// ABOUTME: Wires grading and gamification and tracks adaptive difficulty

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chatlingo/chatlingo/internal/gamification"
	"github.com/chatlingo/chatlingo/internal/grading"
	"github.com/chatlingo/chatlingo/internal/store"
)

const (
	difficultyMin = 1
	difficultyMax = 5
	// promoteAfter is the correct-answer run length that bumps difficulty.
	promoteAfter = 3
)

// SuggestedLanguages is offered when a user has no learning language yet.
var SuggestedLanguages = []string{"de", "es", "fr", "it"}

// StartResult is the outcome of starting a practice session.
type StartResult struct {
	Exercises                 []*store.Exercise
	RequiresLanguageSelection bool
	SuggestedLanguages        []string
}

// SubmitResult is the outcome of submitting one answer.
type SubmitResult struct {
	IsCorrect   bool
	AwardedXP   int
	Feedback    string
	NewXP       int
	Hearts      int
	StreakCount int
}

// Service runs practice sessions on top of the store.
type Service struct {
	store  store.Store
	game   *gamification.Service
	logger *slog.Logger
}

func NewService(s store.Store, game *gamification.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, game: game, logger: logger.With("component", "session")}
}

// Start selects exercises for a practice session. When the user has no
// learning language and none is provided, it returns a language-selection
// prompt instead of exercises.
func (s *Service) Start(ctx context.Context, userID string, lessonID, language *string, limit int) (*StartResult, error) {
	profile, err := s.game.EnsureUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.LearningLanguage == nil && (language == nil || *language == "") {
		return &StartResult{
			RequiresLanguageSelection: true,
			SuggestedLanguages:        SuggestedLanguages,
		}, nil
	}

	if language != nil && *language != "" {
		profile.LearningLanguage = language
		if err := s.store.UpdateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("updating learning language: %w", err)
		}
	}

	lang := "de"
	if profile.LearningLanguage != nil {
		lang = *profile.LearningLanguage
	}

	filter := store.SessionFilter{Language: &lang, Limit: limit}
	if lessonID != nil && *lessonID != "" {
		filter = store.SessionFilter{LessonID: lessonID, Limit: limit}
	} else {
		filter.TargetDifficulty = clampDifficulty(profile.CurrentDifficulty)
	}

	exercises, err := s.store.SelectSessionExercises(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("selecting exercises: %w", err)
	}

	s.logger.Debug("session started", "user_id", userID, "language", lang, "exercises", len(exercises))
	return &StartResult{Exercises: exercises}, nil
}

// Submit grades an answer, adjusts adaptive difficulty, applies XP, hearts
// and streak effects, and records the attempt.
func (s *Service) Submit(ctx context.Context, userID, exerciseID, answer string, timeMS int) (*SubmitResult, error) {
	profile, err := s.game.EnsureUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	exercise, err := s.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("loading exercise: %w", err)
	}

	result := grading.Grade(exercise, answer)

	s.adjustDifficulty(profile, result.IsCorrect)

	awarded, err := s.game.ApplyAnswerOutcome(ctx, profile, result.IsCorrect)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	attempt := &store.Attempt{
		UserID:     userID,
		ExerciseID: exerciseID,
		IsCorrect:  result.IsCorrect,
		Answer:     &answer,
		TimeMS:     timeMS,
		AwardedXP:  awarded,
		Level:      &exercise.Difficulty,
	}
	if err := s.store.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("recording attempt: %w", err)
	}

	return &SubmitResult{
		IsCorrect:   result.IsCorrect,
		AwardedXP:   awarded,
		Feedback:    result.Feedback,
		NewXP:       profile.XP,
		Hearts:      profile.Hearts,
		StreakCount: profile.StreakCount,
	}, nil
}

// adjustDifficulty moves the profile's difficulty up after a run of correct
// answers and down on a miss.
func (s *Service) adjustDifficulty(profile *store.Profile, isCorrect bool) {
	if isCorrect {
		profile.CorrectStreak++
		if profile.CorrectStreak >= promoteAfter {
			profile.CurrentDifficulty = min(difficultyMax, profile.CurrentDifficulty+1)
			profile.CorrectStreak = 0
		}
		return
	}
	profile.CorrectStreak = 0
	profile.CurrentDifficulty = max(difficultyMin, profile.CurrentDifficulty-1)
}

func clampDifficulty(d int) int {
	return max(difficultyMin, min(difficultyMax, d))
}
