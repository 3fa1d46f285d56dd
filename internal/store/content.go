// ABOUTME: Skill, Lesson and Exercise store methods for learning content
// ABOUTME: Includes difficulty-biased random selection for practice sessions

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// CreateSkill inserts a new skill row.
func (s *SQLiteStore) CreateSkill(ctx context.Context, skill *Skill) error {
	query := `INSERT INTO skills (id, title, order_index) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, skill.ID, skill.Title, skill.OrderIndex)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting skill: %w", err)
	}
	return nil
}

// CountSkills returns the number of skills, used to decide whether to seed.
func (s *SQLiteStore) CountSkills(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM skills`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting skills: %w", err)
	}
	return count, nil
}

// CreateLesson inserts a new lesson row.
func (s *SQLiteStore) CreateLesson(ctx context.Context, lesson *Lesson) error {
	meta, err := marshalMeta(lesson.Meta)
	if err != nil {
		return fmt.Errorf("encoding lesson meta: %w", err)
	}

	query := `INSERT INTO lessons (id, skill_id, order_index, meta, lang) VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		lesson.ID, lesson.SkillID, lesson.OrderIndex, meta, nullString(lesson.Lang))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting lesson: %w", err)
	}
	return nil
}

// CreateExercise inserts a new exercise row.
func (s *SQLiteStore) CreateExercise(ctx context.Context, exercise *Exercise) error {
	var choices any
	if exercise.Choices != nil {
		data, err := json.Marshal(exercise.Choices)
		if err != nil {
			return fmt.Errorf("encoding choices: %w", err)
		}
		choices = string(data)
	}

	props, err := marshalMeta(exercise.SRSProps)
	if err != nil {
		return fmt.Errorf("encoding srs props: %w", err)
	}

	query := `
		INSERT INTO exercises (id, lesson_id, type, prompt, answer_key, choices, difficulty, srs_props)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		exercise.ID, exercise.LessonID, exercise.Type, exercise.Prompt,
		nullString(exercise.AnswerKey), choices, exercise.Difficulty, props)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}
	return nil
}

const exerciseColumns = `id, lesson_id, type, prompt, answer_key, choices, difficulty, srs_props`

// GetExercise returns an exercise by ID, or ErrNotFound.
func (s *SQLiteStore) GetExercise(ctx context.Context, id string) (*Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	ex, err := scanExercise(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return ex, nil
}

// ListExercises returns all exercises in insertion order.
func (s *SQLiteStore) ListExercises(ctx context.Context) ([]*Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// SelectSessionExercises picks exercises for a practice session.
//
// With a lesson ID the pick is random within the lesson. With a language it is
// restricted to lessons matching that language (lang column or meta JSON) and,
// when a target difficulty is set, ordered by closeness to that level before
// the random tiebreak.
func (s *SQLiteStore) SelectSessionExercises(ctx context.Context, filter SessionFilter) ([]*Exercise, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 5
	}

	var (
		query string
		args  []any
	)
	switch {
	case filter.LessonID != nil:
		query = `SELECT ` + exerciseColumns + ` FROM exercises
			WHERE lesson_id = ? ORDER BY RANDOM() LIMIT ?`
		args = []any{*filter.LessonID, limit}

	case filter.Language != nil:
		lessonFilter := `SELECT id FROM lessons
			WHERE lang = ? OR json_extract(meta, '$.lang') = ?`
		if filter.TargetDifficulty > 0 {
			query = `SELECT ` + exerciseColumns + ` FROM exercises
				WHERE lesson_id IN (` + lessonFilter + `)
				ORDER BY ABS(difficulty - ?), RANDOM() LIMIT ?`
			args = []any{*filter.Language, *filter.Language, filter.TargetDifficulty, limit}
		} else {
			query = `SELECT ` + exerciseColumns + ` FROM exercises
				WHERE lesson_id IN (` + lessonFilter + `)
				ORDER BY RANDOM() LIMIT ?`
			args = []any{*filter.Language, *filter.Language, limit}
		}

	default:
		query = `SELECT ` + exerciseColumns + ` FROM exercises ORDER BY RANDOM() LIMIT ?`
		args = []any{limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting session exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for exercise scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(row scanner) (*Exercise, error) {
	var (
		ex        Exercise
		answerKey sql.NullString
		choices   sql.NullString
		props     string
	)
	err := row.Scan(&ex.ID, &ex.LessonID, &ex.Type, &ex.Prompt, &answerKey, &choices, &ex.Difficulty, &props)
	if err != nil {
		return nil, err
	}

	ex.AnswerKey = stringPtr(answerKey)
	if choices.Valid && choices.String != "" {
		if err := json.Unmarshal([]byte(choices.String), &ex.Choices); err != nil {
			return nil, fmt.Errorf("decoding choices: %w", err)
		}
	}
	if props != "" {
		if err := json.Unmarshal([]byte(props), &ex.SRSProps); err != nil {
			return nil, fmt.Errorf("decoding srs props: %w", err)
		}
	}
	return &ex, nil
}

// marshalMeta encodes a meta map as JSON, defaulting to an empty object.
func marshalMeta(meta map[string]any) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
