// Package store provides persistent storage for chatlingo using SQLite.
//
// # Data Models
//
//   - User / Profile: learner identity plus XP, hearts, gems, streak and
//     adaptive-difficulty state
//   - Skill / Lesson / Exercise: learning content, lessons tagged with a
//     language both in a lang column and in JSON meta
//   - Attempt: graded answers with awarded XP and a difficulty snapshot
//   - StreakLog: one row per user per active day
//   - Badge / UserBadge: gamification badges (schema reserved)
//   - MediaEvent: audit trail for media tool usage
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as RFC3339 text, dates as YYYY-MM-DD text.
//
// # Migrations
//
// The schema is created on open. Minimal column migrations bring databases
// from older schema versions up to date (profiles language/difficulty
// columns, lessons.lang, attempts.level).
//
// # Error Handling
//
//   - ErrNotFound: requested entity does not exist
//   - ErrDuplicate: uniqueness constraint violated
//
// All methods accept context.Context for cancellation support. Use
// NewSQLiteStore with a t.TempDir path in tests.
package store
