// ABOUTME: Store interface and data types for chatlingo persistence
// ABOUTME: Defines learner, content, attempt and media-event entities

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness constraint is violated
var ErrDuplicate = errors.New("already exists")

// Gamification defaults shared between the store and services.
const (
	// HeartsMax is the number of hearts a fresh profile starts with.
	HeartsMax = 5
)

// Exercise type constants
const (
	ExerciseTypeTranslate = "translate"
	ExerciseTypeMCQ       = "mcq"
	ExerciseTypeFillBlank = "fill_blank"
)

// User represents a learner identified by the chat layer
type User struct {
	ID        string
	Phone     *string
	Email     *string
	CreatedAt time.Time
}

// Profile holds a learner's gamification and adaptive-difficulty state
type Profile struct {
	UserID           string
	XP               int
	StreakCount      int
	Hearts           int
	Gems             int
	LastActive       *time.Time // date precision, UTC
	LearningLanguage *string    // e.g. "de", "es"
	NativeLanguage   *string    // e.g. "en"

	// Adaptive difficulty tracking
	CurrentDifficulty int
	CorrectStreak     int

	// Hearts regeneration tracking
	HeartsLastRefillAt *time.Time
}

// Skill groups lessons into an ordered unit (e.g. "Basics 1")
type Skill struct {
	ID         string
	Title      string
	OrderIndex int
}

// Lesson is an ordered set of exercises within a skill
type Lesson struct {
	ID         string
	SkillID    string
	OrderIndex int
	Meta       map[string]any
	Lang       *string
}

// Exercise is a single prompt a learner answers
type Exercise struct {
	ID         string
	LessonID   string
	Type       string // "translate", "mcq", "fill_blank"
	Prompt     string
	AnswerKey  *string
	Choices    []string
	Difficulty int
	SRSProps   map[string]any
}

// Attempt records one graded answer, with an XP and difficulty snapshot
type Attempt struct {
	ID         string
	UserID     string
	ExerciseID string
	IsCorrect  bool
	Answer     *string
	TimeMS     int
	AwardedXP  int
	Level      *int // exercise difficulty at attempt time
	CreatedAt  time.Time
}

// MediaEvent is an audit record for media tool usage
type MediaEvent struct {
	ID        string
	UserID    *string
	EventType string
	Meta      map[string]any
	CreatedAt time.Time
}

// SessionFilter narrows exercise selection for a practice session.
type SessionFilter struct {
	LessonID *string
	Language *string
	// TargetDifficulty biases selection toward exercises near this level
	// when non-zero. Clamped to 1..5 by callers.
	TargetDifficulty int
	Limit            int
}

// Store defines the interface for chatlingo persistence
type Store interface {
	// Users and profiles
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, profile *Profile) error

	// Content
	CreateSkill(ctx context.Context, skill *Skill) error
	CreateLesson(ctx context.Context, lesson *Lesson) error
	CreateExercise(ctx context.Context, exercise *Exercise) error
	CountSkills(ctx context.Context) (int, error)
	GetExercise(ctx context.Context, id string) (*Exercise, error)
	ListExercises(ctx context.Context) ([]*Exercise, error)
	SelectSessionExercises(ctx context.Context, filter SessionFilter) ([]*Exercise, error)

	// Attempts and streak log
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	RecentAttempts(ctx context.Context, userID, exerciseID string, limit int) ([]*Attempt, error)
	XPSince(ctx context.Context, userID string, since time.Time) (int, error)
	HasStreakDay(ctx context.Context, userID string, day time.Time) (bool, error)
	AddStreakDay(ctx context.Context, userID string, day time.Time) error

	// Media events
	CreateMediaEvent(ctx context.Context, event *MediaEvent) error

	// Ping verifies database liveness for health checks
	Ping(ctx context.Context) error
	Close() error
}
