// ABOUTME: Tests for the backend HTTP client
// ABOUTME: Uses httptest servers to verify paths, auth and error decoding

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "secret-token")
}

func TestStartSession(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(SessionStart{
			Exercises: []Exercise{{ID: "ex-1", Type: "translate", Prompt: "Hello"}},
		})
	})

	lang := "es"
	result, err := c.StartSession(context.Background(), "u1", nil, &lang)
	require.NoError(t, err)
	require.Len(t, result.Exercises, 1)
	assert.Equal(t, "ex-1", result.Exercises[0].ID)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/sessions/start", gotPath)
	assert.Equal(t, "u1", gotBody["user_id"])
	assert.Equal(t, "es", gotBody["learning_language"])
	assert.NotContains(t, gotBody, "lesson_id")
}

func TestSubmitAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/submit", r.URL.Path)
		json.NewEncoder(w).Encode(SubmitResult{IsCorrect: true, AwardedXP: 10, NewXP: 30, Hearts: 5, StreakCount: 2})
	})

	result, err := c.SubmitAnswer(context.Background(), "u1", "ex-1", "hola", nil)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 10, result.AwardedXP)
}

func TestGamificationStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gamification/status", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		json.NewEncoder(w).Encode(GamificationStatus{XP: 40, Hearts: 3, StreakCount: 4, DailyGoalXP: 20, WeeklyXP: 40})
	})

	status, err := c.GamificationStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 40, status.XP)
	assert.Equal(t, 3, status.Hearts)
}

func TestSRSDue_LimitPassed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/srs/due", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(srsDueResponse{Exercises: []Exercise{{ID: "ex-1"}}})
	})

	exercises, err := c.SRSDue(context.Background(), "u1", 7)
	require.NoError(t, err)
	assert.Len(t, exercises, 1)
}

func TestAnalyzeImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/image/analyze", r.URL.Path)
		json.NewEncoder(w).Encode(ImageAnalysis{Width: 640, Height: 480})
	})

	analysis, err := c.AnalyzeImage(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, 640, analysis.Width)
}

func TestTranscribeAudio(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "audio/ogg", body["mime_type"])
		json.NewEncoder(w).Encode(Transcription{Transcript: "hola", Engine: "whisper-1"})
	})

	mime := "audio/ogg"
	tr, err := c.TranscribeAudio(context.Background(), "aGVsbG8=", &mime)
	require.NoError(t, err)
	assert.Equal(t, "hola", tr.Transcript)
}

func TestBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Exercise not found"})
	})

	_, err := c.SubmitAnswer(context.Background(), "u1", "missing", "x", nil)
	require.Error(t, err)

	var berr *BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, http.StatusNotFound, berr.StatusCode)
	assert.Equal(t, "Exercise not found", berr.Message)
	assert.Contains(t, berr.Error(), "404")
}

func TestBackendError_DetailField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid image data"})
	})

	_, err := c.AnalyzeImage(context.Background(), "x")
	var berr *BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "Invalid image data", berr.Message)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	assert.NoError(t, c.Health(context.Background()))
}

func TestSetLearningLanguage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gamification/language", r.URL.Path)
		assert.Equal(t, "de", r.URL.Query().Get("learning_language"))
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	assert.NoError(t, c.SetLearningLanguage(context.Background(), "u1", "de"))
}
