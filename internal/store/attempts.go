// ABOUTME: Attempt and streak-log store methods for graded answers
// ABOUTME: Covers recent-attempt lookups, XP windows and the daily streak log

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateAttempt inserts a graded attempt row.
func (s *SQLiteStore) CreateAttempt(ctx context.Context, attempt *Attempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	var level any
	if attempt.Level != nil {
		level = *attempt.Level
	}

	query := `
		INSERT INTO attempts (id, user_id, exercise_id, is_correct, answer, time_ms, awarded_xp, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.ExerciseID,
		boolToInt(attempt.IsCorrect),
		nullString(attempt.Answer),
		attempt.TimeMS,
		attempt.AwardedXP,
		level,
		attempt.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting attempt: %w", err)
	}
	return nil
}

// RecentAttempts returns a user's attempts on an exercise, newest first.
func (s *SQLiteStore) RecentAttempts(ctx context.Context, userID, exerciseID string, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, exercise_id, is_correct, answer, time_ms, awarded_xp, level, created_at
		FROM attempts
		WHERE user_id = ? AND exercise_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		var (
			a         Attempt
			isCorrect int
			answer    sql.NullString
			timeMS    sql.NullInt64
			level     sql.NullInt64
			createdAt string
		)
		err := rows.Scan(&a.ID, &a.UserID, &a.ExerciseID, &isCorrect, &answer, &timeMS, &a.AwardedXP, &level, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}

		a.IsCorrect = isCorrect != 0
		a.Answer = stringPtr(answer)
		a.TimeMS = int(timeMS.Int64)
		if level.Valid {
			v := int(level.Int64)
			a.Level = &v
		}
		a.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

// XPSince returns the XP a user earned from attempts at or after the given time.
func (s *SQLiteStore) XPSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(awarded_xp), 0)
		FROM attempts
		WHERE user_id = ? AND created_at >= ?
	`
	var total int
	err := s.db.QueryRowContext(ctx, query, userID, since.UTC().Format(time.RFC3339)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing xp: %w", err)
	}
	return total, nil
}

// HasStreakDay reports whether the user already has a streak-log entry for the day.
func (s *SQLiteStore) HasStreakDay(ctx context.Context, userID string, day time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM streak_log WHERE user_id = ? AND date = ?`
	var count int
	err := s.db.QueryRowContext(ctx, query, userID, day.UTC().Format(dateFormat)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking streak day: %w", err)
	}
	return count > 0, nil
}

// AddStreakDay records a streak-log entry for the day. Duplicate days are a no-op.
func (s *SQLiteStore) AddStreakDay(ctx context.Context, userID string, day time.Time) error {
	query := `INSERT INTO streak_log (id, user_id, date) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, uuid.New().String(), userID, day.UTC().Format(dateFormat))
	if isUniqueViolation(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inserting streak day: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
