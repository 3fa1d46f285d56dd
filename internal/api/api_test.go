// ABOUTME: End-to-end tests for the backend HTTP API
// ABOUTME: Runs the full handler stack against a temp SQLite database

package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlingo/chatlingo/internal/auth"
	"github.com/chatlingo/chatlingo/internal/gamification"
	"github.com/chatlingo/chatlingo/internal/media"
	"github.com/chatlingo/chatlingo/internal/session"
	"github.com/chatlingo/chatlingo/internal/srs"
	"github.com/chatlingo/chatlingo/internal/store"
)

const testToken = "test-token"

func setupServer(t *testing.T) http.Handler {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Seed(t.Context())
	require.NoError(t, err)

	game := gamification.NewService(s, nil)
	sess := session.NewService(s, game, nil)
	srsSvc := srs.NewService(s, nil)
	mediaSvc := media.NewService(s, nil, "", "", nil)

	server := NewServer(s, sess, game, srsSvc, mediaSvc, nil, nil)
	return server.Handler(auth.NewStaticVerifier(testToken, "backend"), []string{"*"})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth_NoAuthRequired(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/start", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongToken(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/start", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionStart_LanguageSelection(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/sessions/start", SessionStartRequest{UserID: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[SessionStartResponse](t, rec)
	assert.True(t, resp.RequiresLanguageSelection)
	assert.Equal(t, []string{"de", "es", "fr", "it"}, resp.SuggestedLanguages)
}

func TestSessionStart_WithLanguage(t *testing.T) {
	handler := setupServer(t)
	lang := "es"

	rec := doJSON(t, handler, http.MethodPost, "/sessions/start", SessionStartRequest{
		UserID: "u1", LearningLanguage: &lang,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[SessionStartResponse](t, rec)
	assert.False(t, resp.RequiresLanguageSelection)
	require.NotEmpty(t, resp.Exercises)
	for _, e := range resp.Exercises {
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Prompt)
	}
}

func TestSubmitAnswer_Flow(t *testing.T) {
	handler := setupServer(t)
	lang := "es"

	start := decodeBody[SessionStartResponse](t, doJSON(t, handler, http.MethodPost, "/sessions/start", SessionStartRequest{
		UserID: "u1", LearningLanguage: &lang,
	}))
	require.NotEmpty(t, start.Exercises)

	rec := doJSON(t, handler, http.MethodPost, "/sessions/submit", SubmitAnswerRequest{
		UserID: "u1", ExerciseID: start.Exercises[0].ID, Answer: "definitely wrong answer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[SubmitAnswerResponse](t, rec)
	assert.False(t, resp.IsCorrect)
	assert.Equal(t, 0, resp.AwardedXP)
	assert.Equal(t, store.HeartsMax-1, resp.Hearts)
	assert.NotEmpty(t, resp.Feedback)
}

func TestSubmitAnswer_UnknownExercise(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/sessions/submit", SubmitAnswerRequest{
		UserID: "u1", ExerciseID: "missing", Answer: "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGamificationStatus(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/gamification/status?user_id=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[GamificationStatusResponse](t, rec)
	assert.Equal(t, 0, resp.XP)
	assert.Equal(t, store.HeartsMax, resp.Hearts)
	assert.Equal(t, gamification.DailyGoalXP, resp.DailyGoalXP)
}

func TestGamificationStatus_MissingUser(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/gamification/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetLanguage(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/gamification/language?user_id=u1&learning_language=de", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decodeBody[GamificationStatusResponse](t, doJSON(t, handler, http.MethodGet, "/gamification/status?user_id=u1", nil))
	require.NotNil(t, status.LearningLanguage)
	assert.Equal(t, "de", *status.LearningLanguage)
}

func TestSRSDue(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/srs/due?user_id=u1&limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[SRSDueResponse](t, rec)
	assert.Len(t, resp.Exercises, 3)
}

func TestImageAnalyze(t *testing.T) {
	handler := setupServer(t)

	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	rec := doJSON(t, handler, http.MethodPost, "/media/image/analyze", ImageAnalyzeRequest{
		ImageB64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[ImageAnalyzeResponse](t, rec)
	assert.Equal(t, 6, resp.Width)
	assert.Equal(t, 4, resp.Height)
}

func TestImageAnalyze_Invalid(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/media/image/analyze", ImageAnalyzeRequest{ImageB64: "garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscribeAudio_Stub(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/media/audio/transcribe", TranscribeAudioRequest{
		AudioB64: base64.StdEncoding.EncodeToString([]byte("audio")),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[TranscribeAudioResponse](t, rec)
	assert.Equal(t, "stub", resp.Engine)
	assert.Equal(t, media.StubTranscript, resp.Transcript)
}

func TestMediaEvent(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/media/event", MediaEventRequest{
		EventType: "image_analyze_tool",
		Meta:      map[string]any{"size": 128},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["ok"])
	assert.NotEmpty(t, resp["id"])
}

func TestMediaEvent_MissingType(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/media/event", MediaEventRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/sessions/start", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
