// ABOUTME: HTTP API handlers for sessions, gamification, SRS and media
// ABOUTME: JSON request/response types mirror the tool-facing contract

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/chatlingo/chatlingo/internal/gamification"
	"github.com/chatlingo/chatlingo/internal/store"
	"github.com/chatlingo/chatlingo/internal/whatsapp"
)

// maxBodySize caps JSON request bodies at 10MB; base64 media payloads are
// the largest expected bodies.
const maxBodySize = 10 << 20

// ExerciseOut is the JSON shape of an exercise handed to clients. The answer
// key is never included.
type ExerciseOut struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Prompt     string   `json:"prompt"`
	Choices    []string `json:"choices,omitempty"`
	Difficulty int      `json:"difficulty"`
}

// SessionStartRequest is the JSON request body for POST /sessions/start.
type SessionStartRequest struct {
	UserID           string  `json:"user_id"`
	LessonID         *string `json:"lesson_id,omitempty"`
	LearningLanguage *string `json:"learning_language,omitempty"`
	Limit            int     `json:"limit,omitempty"`
}

// SessionStartResponse is the JSON response for POST /sessions/start.
type SessionStartResponse struct {
	Exercises                 []ExerciseOut `json:"exercises"`
	RequiresLanguageSelection bool          `json:"requires_language_selection"`
	SuggestedLanguages        []string      `json:"suggested_languages,omitempty"`
}

// SubmitAnswerRequest is the JSON request body for POST /sessions/submit.
type SubmitAnswerRequest struct {
	UserID     string `json:"user_id"`
	ExerciseID string `json:"exercise_id"`
	Answer     string `json:"answer"`
	TimeMS     *int   `json:"time_ms,omitempty"`
}

// SubmitAnswerResponse is the JSON response for POST /sessions/submit.
type SubmitAnswerResponse struct {
	IsCorrect   bool   `json:"is_correct"`
	AwardedXP   int    `json:"awarded_xp"`
	Feedback    string `json:"feedback"`
	NewXP       int    `json:"new_xp"`
	Hearts      int    `json:"hearts"`
	StreakCount int    `json:"streak_count"`
}

// GamificationStatusResponse is the JSON response for GET /gamification/status.
type GamificationStatusResponse struct {
	XP               int     `json:"xp"`
	Hearts           int     `json:"hearts"`
	StreakCount      int     `json:"streak_count"`
	DailyGoalXP      int     `json:"daily_goal_xp"`
	WeeklyXP         int     `json:"weekly_xp"`
	LearningLanguage *string `json:"learning_language,omitempty"`
	NativeLanguage   *string `json:"native_language,omitempty"`
}

// SRSDueResponse is the JSON response for GET /srs/due.
type SRSDueResponse struct {
	Exercises []ExerciseOut `json:"exercises"`
}

// ImageAnalyzeRequest is the JSON request body for POST /media/image/analyze.
type ImageAnalyzeRequest struct {
	ImageB64 string `json:"image_b64"`
}

// ImageAnalyzeResponse is the JSON response for POST /media/image/analyze.
type ImageAnalyzeResponse struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Text   *string `json:"text,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// TranscribeAudioRequest is the JSON request body for POST /media/audio/transcribe.
type TranscribeAudioRequest struct {
	AudioB64 string  `json:"audio_b64"`
	MimeType *string `json:"mime_type,omitempty"`
}

// TranscribeAudioResponse is the JSON response for POST /media/audio/transcribe.
type TranscribeAudioResponse struct {
	Transcript string   `json:"transcript"`
	Confidence *float64 `json:"confidence,omitempty"`
	Engine     string   `json:"engine"`
}

// MediaEventRequest is the JSON request body for POST /media/event.
type MediaEventRequest struct {
	UserID    *string        `json:"user_id,omitempty"`
	EventType string         `json:"event_type"`
	Meta      map[string]any `json:"meta,omitempty"`
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SessionStartRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := s.session.Start(r.Context(), req.UserID, req.LessonID, req.LearningLanguage, req.Limit)
	if err != nil {
		s.logger.Error("session start failed", "user_id", req.UserID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "starting session failed")
		return
	}

	if result.RequiresLanguageSelection {
		s.sendLanguageButtons(r.Context(), req.UserID, result.SuggestedLanguages)
	}

	s.writeJSON(w, http.StatusOK, SessionStartResponse{
		Exercises:                 toExerciseOuts(result.Exercises),
		RequiresLanguageSelection: result.RequiresLanguageSelection,
		SuggestedLanguages:        result.SuggestedLanguages,
	})
}

// sendLanguageButtons pushes quick-reply language buttons over WhatsApp when
// the user id carries a phone number. Best effort.
func (s *Server) sendLanguageButtons(ctx context.Context, userID string, languages []string) {
	if s.wa == nil || !s.wa.IsConfigured() {
		return
	}
	number, ok := strings.CutPrefix(userID, "wa:")
	if !ok {
		return
	}

	replies := make([]whatsapp.Reply, 0, 3)
	for _, lang := range languages {
		if len(replies) == 3 {
			break
		}
		replies = append(replies, whatsapp.Reply{
			ID:    "set_lang_" + lang,
			Title: "Learn " + strings.ToUpper(lang),
		})
	}

	if _, err := s.wa.SendQuickReplies(ctx, number, "Please choose a language to learn:", replies); err != nil {
		s.logger.Warn("sending language buttons failed", "user_id", userID, "error", err)
	}
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SubmitAnswerRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" || req.ExerciseID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "user_id and exercise_id are required")
		return
	}

	timeMS := 0
	if req.TimeMS != nil {
		timeMS = *req.TimeMS
	}

	result, err := s.session.Submit(r.Context(), req.UserID, req.ExerciseID, req.Answer, timeMS)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		s.logger.Error("submit failed", "user_id", req.UserID, "exercise_id", req.ExerciseID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "submitting answer failed")
		return
	}

	s.writeJSON(w, http.StatusOK, SubmitAnswerResponse{
		IsCorrect:   result.IsCorrect,
		AwardedXP:   result.AwardedXP,
		Feedback:    result.Feedback,
		NewXP:       result.NewXP,
		Hearts:      result.Hearts,
		StreakCount: result.StreakCount,
	})
}

func (s *Server) handleGamificationStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	profile, err := s.game.EnsureUserProfile(r.Context(), userID)
	if err != nil {
		s.logger.Error("loading profile failed", "user_id", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "loading profile failed")
		return
	}

	// Apply pending heart regeneration before reporting
	s.game.RegenHearts(profile)
	if err := s.store.UpdateProfile(r.Context(), profile); err != nil {
		s.logger.Error("updating profile failed", "user_id", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "updating profile failed")
		return
	}

	weekly, err := s.game.WeeklyXP(r.Context(), userID)
	if err != nil {
		s.logger.Error("weekly xp failed", "user_id", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "loading weekly xp failed")
		return
	}

	s.writeJSON(w, http.StatusOK, GamificationStatusResponse{
		XP:               profile.XP,
		Hearts:           profile.Hearts,
		StreakCount:      profile.StreakCount,
		DailyGoalXP:      gamification.DailyGoalXP,
		WeeklyXP:         weekly,
		LearningLanguage: profile.LearningLanguage,
		NativeLanguage:   profile.NativeLanguage,
	})
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	lang := r.URL.Query().Get("learning_language")
	if userID == "" || lang == "" {
		s.sendJSONError(w, http.StatusBadRequest, "user_id and learning_language are required")
		return
	}

	profile, err := s.game.EnsureUserProfile(r.Context(), userID)
	if err != nil {
		s.logger.Error("loading profile failed", "user_id", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "loading profile failed")
		return
	}
	profile.LearningLanguage = &lang
	if err := s.store.UpdateProfile(r.Context(), profile); err != nil {
		s.logger.Error("updating profile failed", "user_id", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "updating profile failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "learning_language": lang})
}

func (s *Server) handleSRSDue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	limit := queryInt(r, "limit", 20)

	if _, err := s.game.EnsureUserProfile(r.Context(), userID); err != nil {
		s.logger.Error("loading profile failed", "user_id", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "loading profile failed")
		return
	}

	exercises, err := s.srs.DueExercises(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error("srs due failed", "user_id", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "loading due exercises failed")
		return
	}

	s.writeJSON(w, http.StatusOK, SRSDueResponse{Exercises: toExerciseOuts(exercises)})
}

func (s *Server) handleImageAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ImageAnalyzeRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := s.media.AnalyzeImage(r.Context(), optionalUserID(r), req.ImageB64)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "Invalid image data: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ImageAnalyzeResponse{
		Width:  analysis.Width,
		Height: analysis.Height,
		Text:   analysis.Text,
		Notes:  analysis.Notes,
	})
}

func (s *Server) handleTranscribeAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req TranscribeAudioRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	tr, err := s.media.Transcribe(r.Context(), optionalUserID(r), req.AudioB64, req.MimeType)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "Invalid audio data: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, TranscribeAudioResponse{
		Transcript: tr.Transcript,
		Confidence: tr.Confidence,
		Engine:     tr.Engine,
	})
}

func (s *Server) handleMediaEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req MediaEventRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EventType == "" {
		s.sendJSONError(w, http.StatusBadRequest, "event_type is required")
		return
	}

	id, err := s.media.RecordEvent(r.Context(), req.UserID, req.EventType, req.Meta)
	if err != nil {
		s.logger.Error("recording media event failed", "event_type", req.EventType, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "recording event failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.sendJSONError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toExerciseOuts(exercises []*store.Exercise) []ExerciseOut {
	out := make([]ExerciseOut, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, ExerciseOut{
			ID:         e.ID,
			Type:       e.Type,
			Prompt:     e.Prompt,
			Choices:    e.Choices,
			Difficulty: e.Difficulty,
		})
	}
	return out
}

func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(io.LimitReader(r, maxBodySize)).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func optionalUserID(r *http.Request) *string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return &id
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
