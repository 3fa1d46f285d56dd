// ABOUTME: Session tools: start a practice session and submit answers
// ABOUTME: Renders exercises deterministically to avoid upstream hallucinations

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chatlingo/chatlingo/internal/mcp"
)

var sessionToolDescription = RichToolDescription{
	Description: "ChatLingo tools: start a session, submit an answer, check your daily goals and streak, and review due vocab.",
	UseWhen:     "Use to drive a structured language learning flow with XP, hearts, streaks, and adaptive difficulty.",
}

const welcomeText = "Welcome to ChatLingo!\n\n" +
	"Here's how it works:\n" +
	"- Earn XP for correct answers and build your streak.\n" +
	"- Hearts represent your lives; wrong answers cost a heart. Hearts regenerate over time.\n" +
	"- Difficulty adapts to your performance.\n" +
	"- You can ask for a Hint, skip with Next, or Quit anytime.\n\n"

const answerInstructions = "\n\nReply with your answer only (e.g., the word/phrase or 'a'/'b'/'c' for choices). It will be graded and your XP will update."

func sessionStartTool(deps Deps) *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_start",
		Description: sessionToolDescription.String(),
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"user_id": {"type": "string", "description": "User identifier"},
				"lesson_id": {"type": "string", "description": "Optional lesson id to focus session on"},
				"learning_language": {"type": "string", "description": "Optional target learning language, e.g., 'de', 'es'"}
			},
			"required": ["user_id"]
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			var in struct {
				UserID           string  `json:"user_id"`
				LessonID         *string `json:"lesson_id"`
				LearningLanguage *string `json:"learning_language"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.UserID == "" {
				return nil, mcp.InvalidArguments("user_id is required")
			}

			result, err := deps.Backend.StartSession(ctx, in.UserID, in.LessonID, in.LearningLanguage)
			if err != nil {
				return backendErrorResult(err), nil
			}

			if result.RequiresLanguageSelection {
				return textResult(renderLanguageSelection(result.SuggestedLanguages)), nil
			}

			if len(result.Exercises) == 0 {
				return textResult(withReplies("You're all caught up for now. No exercises available.", []suggestion{
					{Title: "Next", ID: "next_ex"},
					{Title: "Quit", ID: "quit"},
				})), nil
			}

			// Render only the first exercise so the chat layer does not
			// invent alternate prompts.
			ex := result.Exercises[0]
			body := renderExercisePrompt(ex.Type, ex.Prompt, ex.Choices) +
				answerInstructions +
				"\n\n" + metaTrailer("exercise_meta", map[string]any{"exercise_id": ex.ID, "type": ex.Type})

			return textResult(withReplies(body, []suggestion{
				{Title: "Next", ID: "next_ex"},
				{Title: "Hint", ID: "hint"},
				{Title: "Quit", ID: "quit"},
			})), nil
		},
	}
}

func renderLanguageSelection(langs []string) string {
	if len(langs) == 0 {
		langs = []string{"de", "es"}
	}

	suggestions := make([]suggestion, 0, 3)
	for _, l := range langs {
		if len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, suggestion{
			Title: "Learn " + strings.ToUpper(l),
			ID:    "set_lang_" + l,
		})
	}

	return welcomeText +
		"Please choose a language to learn: " + strings.Join(langs, ", ") +
		"\n\n" + suggestedReplies(suggestions)
}

func submitAnswerTool(deps Deps) *mcp.Tool {
	return &mcp.Tool{
		Name:        "submit_answer",
		Description: "Submit an answer for grading and XP/streak updates via backend",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"user_id": {"type": "string", "description": "User identifier"},
				"exercise_id": {"type": "string", "description": "Exercise id"},
				"answer": {"type": "string", "description": "User's answer"}
			},
			"required": ["user_id", "exercise_id", "answer"]
		}`),
		Handler: func(ctx context.Context, args json.RawMessage) (*mcp.MCPCallToolResult, error) {
			var in struct {
				UserID     string `json:"user_id"`
				ExerciseID string `json:"exercise_id"`
				Answer     string `json:"answer"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.UserID == "" || in.ExerciseID == "" || in.Answer == "" {
				return nil, mcp.InvalidArguments("user_id, exercise_id and answer are required")
			}

			result, err := deps.Backend.SubmitAnswer(ctx, in.UserID, in.ExerciseID, in.Answer, nil)
			if err != nil {
				return backendErrorResult(err), nil
			}

			var summary string
			if result.IsCorrect {
				summary = "Correct! 🎉"
				if result.AwardedXP > 0 {
					summary += fmt.Sprintf(" +%d XP", result.AwardedXP)
				}
			} else {
				summary = result.Feedback
				if summary == "" {
					summary = "Incorrect."
				}
			}

			body := summary + "\n\n" + metaTrailer("result_meta", map[string]any{
				"correct":    result.IsCorrect,
				"awarded_xp": result.AwardedXP,
				"hearts":     result.Hearts,
				"streak":     result.StreakCount,
			})

			return textResult(withReplies(body, []suggestion{
				{Title: "Next", ID: "next_ex"},
				{Title: "Explain", ID: "explain"},
				{Title: "Repeat", ID: "repeat"},
			})), nil
		},
	}
}
