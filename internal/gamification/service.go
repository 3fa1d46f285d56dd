// ABOUTME: Gamification service managing XP, hearts, gems and daily streaks
// ABOUTME: Hearts regenerate on a fixed interval; streaks advance once per day

package gamification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chatlingo/chatlingo/internal/store"
)

// Gamification constants.
const (
	// DailyGoalXP is the XP target reported with status.
	DailyGoalXP = 20

	// CorrectAnswerXP is awarded per correct answer.
	CorrectAnswerXP = 10

	// HeartsRegenInterval is the time to regenerate one heart.
	HeartsRegenInterval = 15 * time.Minute
)

// Service implements gamification rules over the store.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a gamification service.
func NewService(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		logger: logger.With("component", "gamification"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Test helper.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// EnsureUserProfile returns the user's profile, creating the user and a
// default profile on first contact.
func (s *Service) EnsureUserProfile(ctx context.Context, userID string) (*store.Profile, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("loading user: %w", err)
		}
		if err := s.store.CreateUser(ctx, &store.User{ID: userID}); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("creating user: %w", err)
		}
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	native := "en"
	refill := s.now()
	profile = &store.Profile{
		UserID:             userID,
		Hearts:             store.HeartsMax,
		NativeLanguage:     &native,
		CurrentDifficulty:  1,
		HeartsLastRefillAt: &refill,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	s.logger.Info("created profile", "user_id", userID)
	return profile, nil
}

// ApplyAnswerOutcome applies XP, hearts and streak effects of a graded
// answer to the profile in memory and returns the awarded XP. The caller is
// responsible for persisting the profile.
func (s *Service) ApplyAnswerOutcome(ctx context.Context, profile *store.Profile, isCorrect bool) (int, error) {
	awarded := 0
	if isCorrect {
		awarded = CorrectAnswerXP
	}
	profile.XP += awarded
	if !isCorrect && profile.Hearts > 0 {
		profile.Hearts--
	}

	if err := s.updateStreakOnActivity(ctx, profile); err != nil {
		return 0, err
	}
	return awarded, nil
}

// updateStreakOnActivity advances the daily streak on the first activity of
// the day: +1 when yesterday was active, reset to 1 after a gap.
func (s *Service) updateStreakOnActivity(ctx context.Context, profile *store.Profile) error {
	today := truncateToDay(s.now())

	last := profile.LastActive
	if last != nil && truncateToDay(*last).Equal(today) {
		return nil
	}

	switch {
	case last == nil:
		profile.StreakCount = 1
	case today.Sub(truncateToDay(*last)) == 24*time.Hour:
		profile.StreakCount++
	default:
		profile.StreakCount = 1
	}
	profile.LastActive = &today

	has, err := s.store.HasStreakDay(ctx, profile.UserID, today)
	if err != nil {
		return fmt.Errorf("checking streak day: %w", err)
	}
	if !has {
		if err := s.store.AddStreakDay(ctx, profile.UserID, today); err != nil {
			return fmt.Errorf("recording streak day: %w", err)
		}
	}
	return nil
}

// RegenHearts applies pending heart regeneration to the profile in memory.
// The caller is responsible for persisting the profile.
func (s *Service) RegenHearts(profile *store.Profile) {
	hearts, refillAt := computeHeartsRefill(s.now(), profile.HeartsLastRefillAt, profile.Hearts)
	if hearts != profile.Hearts {
		profile.Hearts = hearts
		profile.HeartsLastRefillAt = &refillAt
	}
}

// computeHeartsRefill returns the new heart count and the advanced refill
// clock. The clock advances only by whole consumed intervals so partial
// progress toward the next heart is retained.
func computeHeartsRefill(now time.Time, last *time.Time, current int) (int, time.Time) {
	if current >= store.HeartsMax {
		if last != nil {
			return current, *last
		}
		return current, now
	}
	if last == nil {
		return current, now
	}

	refills := int(now.Sub(*last) / HeartsRegenInterval)
	if refills <= 0 {
		return current, *last
	}

	hearts := current + refills
	if hearts > store.HeartsMax {
		hearts = store.HeartsMax
	}
	advanced := last.Add(time.Duration(refills) * HeartsRegenInterval)
	return hearts, advanced
}

// WeeklyXP returns the XP earned over the trailing seven days.
func (s *Service) WeeklyXP(ctx context.Context, userID string) (int, error) {
	return s.store.XPSince(ctx, userID, s.now().Add(-7*24*time.Hour))
}

// truncateToDay drops the time-of-day component in UTC.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
