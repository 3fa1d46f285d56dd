// ABOUTME: Entry point for the chatlingo backend server
// ABOUTME: Serves the sessions, gamification, SRS and media HTTP API

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	"github.com/chatlingo/chatlingo/internal/api"
	"github.com/chatlingo/chatlingo/internal/auth"
	"github.com/chatlingo/chatlingo/internal/config"
	"github.com/chatlingo/chatlingo/internal/gamification"
	"github.com/chatlingo/chatlingo/internal/media"
	"github.com/chatlingo/chatlingo/internal/session"
	"github.com/chatlingo/chatlingo/internal/srs"
	"github.com/chatlingo/chatlingo/internal/store"
	"github.com/chatlingo/chatlingo/internal/whatsapp"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
      _           _   _ _
  ___| |__   __ _| |_| (_)_ __   __ _  ___
 / __| '_ \ / _' | __| | | '_ \ / _' |/ _ \
| (__| | | | (_| | |_| | | | | | (_| | (_) |
 \___|_| |_|\__,_|\__|_|_|_| |_|\__, |\___/
                                |___/
`

// getConfigPath returns the path to the backend config file.
// Priority: CHATLINGO_CONFIG env var > XDG_CONFIG_HOME/chatlingo/backend.yaml > ~/.config/chatlingo/backend.yaml
func getConfigPath() string {
	if envPath := os.Getenv("CHATLINGO_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "backend.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "chatlingo", "backend.yaml")
}

// loadConfig loads the YAML config when present, falling back to
// environment-based defaults so a bare `chatlingo-backend serve` works.
func loadConfig() (*config.Config, string, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return config.Default(), "(defaults)", nil
		}
		return nil, "", fmt.Errorf("reading config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Local development convenience; ignore when no .env exists
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: chatlingo-backend <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the backend server")
		fmt.Println("  init     Write an example config file")
		fmt.Println("  health   Check backend health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	if cfg.OpenAI.APIKey != "" {
		green.Print("    ▶ ")
		fmt.Printf("Media:    openai (%s, %s)\n", cfg.OpenAI.TranscriptionModel, cfg.OpenAI.VisionModel)
	}
	if cfg.WhatsApp.Token != "" {
		green.Print("    ▶ ")
		fmt.Printf("WhatsApp: %s\n", cfg.WhatsApp.PhoneNumberID)
	}
	fmt.Println()

	logger.Info("starting chatlingo-backend",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlStore.Close()

	if !cfg.Content.SeedDisabled {
		seeded, err := sqlStore.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seeding content: %w", err)
		}
		if seeded {
			logger.Info("seeded starter lessons")
		}
	}

	var openaiClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		occfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			occfg.BaseURL = cfg.OpenAI.BaseURL
		}
		openaiClient = openai.NewClientWithConfig(occfg)
	}

	var wa *whatsapp.Client
	if cfg.WhatsApp.Token != "" {
		wa = whatsapp.NewClient(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.GraphAPIVersion, logger)
	}

	game := gamification.NewService(sqlStore, logger)
	sess := session.NewService(sqlStore, game, logger)
	srsSvc := srs.NewService(sqlStore, logger)
	mediaSvc := media.NewService(sqlStore, openaiClient, cfg.OpenAI.VisionModel, cfg.OpenAI.TranscriptionModel, logger)

	server := api.NewServer(sqlStore, sess, game, srsSvc, mediaSvc, wa, logger)

	verifier := buildVerifier(cfg.Auth)
	if verifier == nil {
		logger.Warn("no auth configured, API is open")
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.Handler(verifier, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildVerifier assembles the token verifier chain from config. Returns nil
// when no auth is configured.
func buildVerifier(cfg config.AuthConfig) auth.TokenVerifier {
	var verifiers []auth.TokenVerifier
	if cfg.BearerToken != "" {
		verifiers = append(verifiers, auth.NewStaticVerifier(cfg.BearerToken, "api-client"))
	}
	if cfg.JWTSecret != "" {
		verifiers = append(verifiers, auth.NewJWTVerifier([]byte(cfg.JWTSecret)))
	}
	if len(verifiers) == 0 {
		return nil
	}
	return auth.NewChainVerifier(verifiers...)
}

const exampleConfig = `# chatlingo backend configuration
server:
  http_addr: "0.0.0.0:8090"
  allowed_origins: ["*"]

database:
  path: "app.db"

auth:
  bearer_token: "${AUTH_TOKEN}"
  # jwt_secret: "${JWT_SECRET}"

content:
  seed_disabled: false

openai:
  api_key: "${OPENAI_API_KEY}"
  transcription_model: "whisper-1"
  vision_model: "gpt-4o-mini"

whatsapp:
  token: "${WHATSAPP_TOKEN}"
  phone_number_id: "${WHATSAPP_PHONE_NUMBER_ID}"
  graph_api_version: "v20.0"

logging:
  level: "info"
  format: "text"
`

func runInit() error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Wrote example config to %s\n", path)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}
