// ABOUTME: User and Profile store methods for learner accounts
// ABOUTME: Profiles carry XP, hearts, streak and adaptive difficulty state

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateUser inserts a new user row.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, phone, email, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		nullString(user.Phone),
		nullString(user.Email),
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID, or ErrNotFound.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, phone, email, created_at FROM users WHERE id = ?`

	var (
		u         User
		phone     sql.NullString
		email     sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &phone, &email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.Phone = stringPtr(phone)
	u.Email = stringPtr(email)
	u.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}

// CreateProfile inserts a new profile row for an existing user.
func (s *SQLiteStore) CreateProfile(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, xp, streak_count, hearts, gems, last_active,
			learning_language, native_language, current_difficulty,
			correct_streak, hearts_last_refill_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.UserID,
		profile.XP,
		profile.StreakCount,
		profile.Hearts,
		profile.Gems,
		nullDate(profile.LastActive),
		nullString(profile.LearningLanguage),
		nullString(profile.NativeLanguage),
		profile.CurrentDifficulty,
		profile.CorrectStreak,
		nullTime(profile.HeartsLastRefillAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// GetProfile returns a profile by user ID, or ErrNotFound.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT user_id, xp, streak_count, hearts, gems, last_active,
		       learning_language, native_language, current_difficulty,
		       correct_streak, hearts_last_refill_at
		FROM profiles WHERE user_id = ?
	`

	var (
		p          Profile
		lastActive sql.NullString
		learning   sql.NullString
		native     sql.NullString
		lastRefill sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.XP, &p.StreakCount, &p.Hearts, &p.Gems, &lastActive,
		&learning, &native, &p.CurrentDifficulty, &p.CorrectStreak, &lastRefill,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	p.LearningLanguage = stringPtr(learning)
	p.NativeLanguage = stringPtr(native)
	if p.LastActive, err = datePtr(lastActive); err != nil {
		return nil, fmt.Errorf("parsing last_active: %w", err)
	}
	if p.HeartsLastRefillAt, err = timePtr(lastRefill); err != nil {
		return nil, fmt.Errorf("parsing hearts_last_refill_at: %w", err)
	}
	return &p, nil
}

// UpdateProfile writes the full mutable state of a profile back to the row.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, profile *Profile) error {
	query := `
		UPDATE profiles SET
			xp = ?, streak_count = ?, hearts = ?, gems = ?, last_active = ?,
			learning_language = ?, native_language = ?, current_difficulty = ?,
			correct_streak = ?, hearts_last_refill_at = ?
		WHERE user_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		profile.XP,
		profile.StreakCount,
		profile.Hearts,
		profile.Gems,
		nullDate(profile.LastActive),
		nullString(profile.LearningLanguage),
		nullString(profile.NativeLanguage),
		profile.CurrentDifficulty,
		profile.CorrectStreak,
		nullTime(profile.HeartsLastRefillAt),
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// nullString converts *string to a driver-friendly value.
func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nullTime formats *time.Time as RFC3339, or nil.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// nullDate formats *time.Time at date precision, or nil.
func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dateFormat)
}

// stringPtr converts a NullString to *string.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// timePtr parses an RFC3339 NullString into *time.Time.
func timePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// datePtr parses a date-precision NullString into *time.Time.
func datePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
