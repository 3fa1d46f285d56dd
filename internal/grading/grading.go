// ABOUTME: Answer grading for exercises with MCQ option mapping
// ABOUTME: Text answers get fuzzy near-miss feedback via edit distance

package grading

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/chatlingo/chatlingo/internal/store"
)

// closeThreshold is the similarity above which a wrong text answer gets a
// spelling hint instead of the expected answer.
const closeThreshold = 0.85

// Result is the outcome of grading one answer.
type Result struct {
	IsCorrect bool
	Feedback  string
}

// Grade grades an answer against an exercise's answer key.
//
// MCQ answers may be the choice text itself, a letter option ("a".."z"), or a
// 1-based index; letters and indices are mapped to the choice text before
// comparison. Other exercise types use normalized equality with fuzzy
// feedback on near misses.
func Grade(exercise *store.Exercise, answer string) Result {
	expected := ""
	if exercise.AnswerKey != nil {
		expected = *exercise.AnswerKey
	}

	if exercise.Type == store.ExerciseTypeMCQ || exercise.Type == "multiple_choice" {
		selected := mapChoice(strings.TrimSpace(answer), exercise.Choices)
		if normalize(selected) == normalize(expected) {
			return Result{IsCorrect: true, Feedback: "Correct!"}
		}
		return Result{IsCorrect: false, Feedback: "Incorrect."}
	}

	if normalize(answer) == normalize(expected) {
		return Result{IsCorrect: true, Feedback: "Correct!"}
	}

	if similarity(normalize(answer), normalize(expected)) > closeThreshold {
		return Result{IsCorrect: false, Feedback: "Close! Watch spelling or accents."}
	}
	return Result{IsCorrect: false, Feedback: fmt.Sprintf("Expected: %s", expected)}
}

// mapChoice resolves letter ("a".."z") and 1-based index answers to the
// corresponding choice text. Anything else is returned unchanged.
func mapChoice(raw string, choices []string) string {
	if len(choices) == 0 {
		return raw
	}

	if utf8.RuneCountInString(raw) == 1 {
		r := []rune(strings.ToLower(raw))[0]
		if r >= 'a' && r <= 'z' {
			idx := int(r - 'a')
			if idx < len(choices) {
				return choices[idx]
			}
			return raw
		}
	}

	if idx, ok := parseIndex(raw); ok && idx >= 1 && idx <= len(choices) {
		return choices[idx-1]
	}

	return raw
}

func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// similarity returns 1 - editDistance/maxLen over runes, in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
