// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides learner/content/attempt persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// dateFormat is the column format for date-precision values (last_active,
// streak_log.date).
const dateFormat = "2006-01-02"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			phone      TEXT UNIQUE,
			email      TEXT UNIQUE,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS profiles (
			user_id               TEXT PRIMARY KEY,
			xp                    INTEGER NOT NULL DEFAULT 0,
			streak_count          INTEGER NOT NULL DEFAULT 0,
			hearts                INTEGER NOT NULL DEFAULT 5,
			gems                  INTEGER NOT NULL DEFAULT 0,
			last_active           TEXT,
			learning_language     TEXT,
			native_language       TEXT,
			current_difficulty    INTEGER NOT NULL DEFAULT 1,
			correct_streak        INTEGER NOT NULL DEFAULT 0,
			hearts_last_refill_at TEXT,

			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS skills (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			order_index INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS lessons (
			id          TEXT PRIMARY KEY,
			skill_id    TEXT NOT NULL,
			order_index INTEGER NOT NULL DEFAULT 0,
			meta        TEXT NOT NULL DEFAULT '{}',
			lang        TEXT,

			FOREIGN KEY (skill_id) REFERENCES skills(id)
		);

		CREATE INDEX IF NOT EXISTS idx_lessons_skill_id ON lessons(skill_id);
		CREATE INDEX IF NOT EXISTS idx_lessons_lang ON lessons(lang);

		CREATE TABLE IF NOT EXISTS exercises (
			id         TEXT PRIMARY KEY,
			lesson_id  TEXT NOT NULL,
			type       TEXT NOT NULL,
			prompt     TEXT NOT NULL,
			answer_key TEXT,
			choices    TEXT,
			difficulty INTEGER NOT NULL DEFAULT 1,
			srs_props  TEXT NOT NULL DEFAULT '{}',

			FOREIGN KEY (lesson_id) REFERENCES lessons(id)
		);

		CREATE INDEX IF NOT EXISTS idx_exercises_lesson_id ON exercises(lesson_id);

		CREATE TABLE IF NOT EXISTS attempts (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			is_correct  INTEGER NOT NULL,
			answer      TEXT,
			time_ms     INTEGER,
			awarded_xp  INTEGER NOT NULL DEFAULT 0,
			level       INTEGER,
			created_at  TEXT NOT NULL,

			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (exercise_id) REFERENCES exercises(id)
		);

		CREATE INDEX IF NOT EXISTS idx_attempts_user_id ON attempts(user_id);
		CREATE INDEX IF NOT EXISTS idx_attempts_exercise_id ON attempts(exercise_id);
		CREATE INDEX IF NOT EXISTS idx_attempts_user_exercise
			ON attempts(user_id, exercise_id, created_at);

		CREATE TABLE IF NOT EXISTS streak_log (
			id      TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date    TEXT NOT NULL,

			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS uq_streak_day ON streak_log(user_id, date);

		CREATE TABLE IF NOT EXISTS badges (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			criteria TEXT NOT NULL DEFAULT '{}'
		);

		CREATE TABLE IF NOT EXISTS user_badges (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			badge_id   TEXT NOT NULL,
			awarded_at TEXT NOT NULL,

			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (badge_id) REFERENCES badges(id)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS uq_user_badge ON user_badges(user_id, badge_id);

		CREATE TABLE IF NOT EXISTS media_events (
			id         TEXT PRIMARY KEY,
			user_id    TEXT,
			event_type TEXT NOT NULL,
			meta       TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_media_events_user_id ON media_events(user_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// runMigrations applies pragmatic column migrations for databases created by
// older versions of the schema.
func (s *SQLiteStore) runMigrations() error {
	migrations := []struct {
		table  string
		column string
		ddl    string
	}{
		{"profiles", "learning_language", "ALTER TABLE profiles ADD COLUMN learning_language TEXT"},
		{"profiles", "native_language", "ALTER TABLE profiles ADD COLUMN native_language TEXT"},
		{"profiles", "current_difficulty", "ALTER TABLE profiles ADD COLUMN current_difficulty INTEGER NOT NULL DEFAULT 1"},
		{"profiles", "correct_streak", "ALTER TABLE profiles ADD COLUMN correct_streak INTEGER NOT NULL DEFAULT 0"},
		{"profiles", "hearts_last_refill_at", "ALTER TABLE profiles ADD COLUMN hearts_last_refill_at TEXT"},
		{"lessons", "lang", "ALTER TABLE lessons ADD COLUMN lang TEXT"},
		{"attempts", "level", "ALTER TABLE attempts ADD COLUMN level INTEGER"},
	}

	for _, m := range migrations {
		exists, err := s.columnExists(m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := s.db.Exec(m.ddl); err != nil {
			return fmt.Errorf("adding %s.%s: %w", m.table, m.column, err)
		}
		s.logger.Info("applied migration", "table", m.table, "column", m.column)
	}

	return nil
}

// columnExists reports whether a column is present on a table.
func (s *SQLiteStore) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return false, fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("scanning table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// isUniqueViolation reports whether err is a SQLite uniqueness failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ping verifies database liveness for health checks.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
