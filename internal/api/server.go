// ABOUTME: HTTP server wiring for the backend: routes, CORS and bearer auth
// ABOUTME: Health stays unauthenticated, everything else goes through auth

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/chatlingo/chatlingo/internal/auth"
	"github.com/chatlingo/chatlingo/internal/gamification"
	"github.com/chatlingo/chatlingo/internal/media"
	"github.com/chatlingo/chatlingo/internal/session"
	"github.com/chatlingo/chatlingo/internal/srs"
	"github.com/chatlingo/chatlingo/internal/store"
	"github.com/chatlingo/chatlingo/internal/whatsapp"
)

// Server holds the backend's HTTP handlers and their dependencies.
type Server struct {
	store   store.Store
	session *session.Service
	game    *gamification.Service
	srs     *srs.Service
	media   *media.Service
	wa      *whatsapp.Client
	logger  *slog.Logger
}

// NewServer wires the handlers. wa may be nil when the WhatsApp Cloud API is
// not configured.
func NewServer(
	s store.Store,
	sess *session.Service,
	game *gamification.Service,
	srsSvc *srs.Service,
	mediaSvc *media.Service,
	wa *whatsapp.Client,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:   s,
		session: sess,
		game:    game,
		srs:     srsSvc,
		media:   mediaSvc,
		wa:      wa,
		logger:  logger.With("component", "api"),
	}
}

// Handler builds the full middleware stack: CORS around bearer auth around
// the routes. verifier may be nil to disable auth (local development).
func (s *Server) Handler(verifier auth.TokenVerifier, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)

	authed := http.NewServeMux()
	s.RegisterRoutes(authed)
	mux.Handle("/", auth.HTTPAuthMiddleware(verifier)(authed))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(mux)
}

// RegisterRoutes registers the API routes on mux without middleware.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/sessions/start", s.handleSessionStart)
	mux.HandleFunc("/sessions/submit", s.handleSubmitAnswer)
	mux.HandleFunc("/gamification/status", s.handleGamificationStatus)
	mux.HandleFunc("/gamification/language", s.handleSetLanguage)
	mux.HandleFunc("/srs/due", s.handleSRSDue)
	mux.HandleFunc("/media/image/analyze", s.handleImageAnalyze)
	mux.HandleFunc("/media/audio/transcribe", s.handleTranscribeAudio)
	mux.HandleFunc("/media/event", s.handleMediaEvent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
