// ABOUTME: Text rendering helpers for tool responses
// ABOUTME: Machine-readable trailers keep conversation state stable upstream

package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// suggestion is one quick-reply offered to the chat layer.
type suggestion struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// suggestedReplies renders the <suggested_replies> trailer.
func suggestedReplies(suggestions []suggestion) string {
	data, _ := json.Marshal(suggestions)
	return fmt.Sprintf("<suggested_replies>%s</suggested_replies>", data)
}

// metaTrailer renders a machine-readable metadata trailer such as
// <exercise_meta> or <result_meta>.
func metaTrailer(tag string, meta map[string]any) string {
	data, _ := json.Marshal(meta)
	return fmt.Sprintf("<%s>%s</%s>", tag, data, tag)
}

// withReplies appends a suggested-replies trailer to body.
func withReplies(body string, suggestions []suggestion) string {
	return body + "\n\n" + suggestedReplies(suggestions)
}

// renderExercisePrompt turns an exercise into the text shown to the learner.
func renderExercisePrompt(exType, prompt string, choices []string) string {
	if strings.HasPrefix(strings.ToLower(prompt), "translate:") {
		phrase := strings.TrimSpace(prompt[strings.Index(prompt, ":")+1:])
		return fmt.Sprintf("Translate the following into the target language:\n\n%q", phrase)
	}
	if (exType == "mcq" || exType == "multiple_choice") && len(choices) > 0 {
		var options strings.Builder
		for _, c := range choices {
			fmt.Fprintf(&options, "- %s\n", c)
		}
		return fmt.Sprintf("%s\n\nChoose one:\n%s", prompt, strings.TrimRight(options.String(), "\n"))
	}
	return prompt
}
