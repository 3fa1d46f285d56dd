// ABOUTME: Minimal content seeding so a fresh database has practicable lessons
// ABOUTME: Seeds a Basics 1 skill with Spanish and German starter exercises

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type seedExercise struct {
	typ        string
	prompt     string
	answerKey  string
	choices    []string
	difficulty int
}

var seedLessons = []struct {
	lang      string
	exercises []seedExercise
}{
	{
		lang: "es",
		exercises: []seedExercise{
			{typ: ExerciseTypeTranslate, prompt: "Translate: Hello", answerKey: "Hola", difficulty: 1},
			{typ: ExerciseTypeTranslate, prompt: "Translate: Thank you", answerKey: "Gracias", difficulty: 1},
			{typ: ExerciseTypeMCQ, prompt: "Select 'Good morning'", answerKey: "Buenos días",
				choices: []string{"Buenas noches", "Buenos días", "Adiós"}, difficulty: 1},
			{typ: ExerciseTypeFillBlank, prompt: "Fill: ¿Cómo ____?", answerKey: "estás", difficulty: 2},
			{typ: ExerciseTypeTranslate, prompt: "Translate: Goodbye", answerKey: "Adiós", difficulty: 1},
		},
	},
	{
		lang: "de",
		exercises: []seedExercise{
			{typ: ExerciseTypeTranslate, prompt: "Translate: Good morning", answerKey: "Guten Morgen", difficulty: 1},
			{typ: ExerciseTypeTranslate, prompt: "Translate: Goodbye", answerKey: "Auf Wiedersehen", difficulty: 1},
			{typ: ExerciseTypeMCQ, prompt: "Select 'Hello'", answerKey: "Hallo",
				choices: []string{"Tschüss", "Hallo", "Bitte"}, difficulty: 1},
			{typ: ExerciseTypeFillBlank, prompt: "Fill: Wie ____ du?", answerKey: "heißt", difficulty: 2},
		},
	},
}

// Seed populates starter content when the database has no skills yet.
// Returns true when seeding ran.
func (s *SQLiteStore) Seed(ctx context.Context) (bool, error) {
	count, err := s.CountSkills(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	skill := &Skill{ID: uuid.New().String(), Title: "Basics 1", OrderIndex: 1}
	if err := s.CreateSkill(ctx, skill); err != nil {
		return false, fmt.Errorf("seeding skill: %w", err)
	}

	for i, sl := range seedLessons {
		lang := sl.lang
		lesson := &Lesson{
			ID:         uuid.New().String(),
			SkillID:    skill.ID,
			OrderIndex: i + 1,
			Meta:       map[string]any{"lang": lang},
			Lang:       &lang,
		}
		if err := s.CreateLesson(ctx, lesson); err != nil {
			return false, fmt.Errorf("seeding %s lesson: %w", lang, err)
		}

		for _, se := range sl.exercises {
			answer := se.answerKey
			ex := &Exercise{
				ID:         uuid.New().String(),
				LessonID:   lesson.ID,
				Type:       se.typ,
				Prompt:     se.prompt,
				AnswerKey:  &answer,
				Choices:    se.choices,
				Difficulty: se.difficulty,
			}
			if err := s.CreateExercise(ctx, ex); err != nil {
				return false, fmt.Errorf("seeding %s exercise: %w", lang, err)
			}
		}
	}

	s.logger.Info("seeded starter content", "skills", 1, "lessons", len(seedLessons))
	return true, nil
}
