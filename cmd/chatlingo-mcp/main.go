// ABOUTME: Entry point for the chatlingo MCP server
// ABOUTME: Exposes language-learning tools over MCP Streamable HTTP with bearer auth

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"tailscale.com/tsnet"

	"github.com/chatlingo/chatlingo/internal/auth"
	"github.com/chatlingo/chatlingo/internal/client"
	"github.com/chatlingo/chatlingo/internal/mcp"
	"github.com/chatlingo/chatlingo/internal/tools"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
      _           _   _ _
  ___| |__   __ _| |_| (_)_ __   __ _  ___
 / __| '_ \ / _' | __| | | '_ \ / _' |/ _ \
| (__| | | | (_| | |_| | | | | | (_| | (_) |
 \___|_| |_|\__,_|\__|_|_|_| |_|\__, |\___/
                                |___/  mcp
`

// getConfigPath returns the path to the MCP server config file.
// Priority: CHATLINGO_MCP_CONFIG env var > XDG_CONFIG_HOME/chatlingo/mcp.toml > ~/.config/chatlingo/mcp.toml
func getConfigPath() string {
	if envPath := os.Getenv("CHATLINGO_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "mcp.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "chatlingo", "mcp.toml")
}

// loadConfig loads the TOML config when present, falling back to environment
// variables so a bare `chatlingo-mcp serve` works with AUTH_TOKEN + MY_NUMBER set.
func loadConfig() (*Config, string, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg, err := FromEnv()
			if err != nil {
				return nil, "", err
			}
			return cfg, "(env)", nil
		}
		return nil, "", fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Local development convenience; ignore when no .env exists
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: chatlingo-mcp <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the MCP server")
		fmt.Println("  init     Write an example config file")
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
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Backend: %s\n", cfg.Backend.URL)
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailnet: %s (funnel=%v)\n", cfg.Tailscale.Hostname, cfg.Tailscale.Funnel)
	}
	fmt.Println()

	backend := client.New(cfg.Backend.URL, cfg.Backend.Token)

	registry := mcp.NewRegistry()
	tools.Register(registry, tools.Deps{
		Backend:  backend,
		MyNumber: cfg.Auth.MyNumber,
		Logger:   logger,
	})

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry:      registry,
		Logger:        logger,
		TokenVerifier: buildVerifier(cfg.Auth),
		RequireAuth:   true,
		ServerName:    "chatlingo-mcp",
		ServerVersion: version,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	mux := http.NewServeMux()
	mcpServer.RegisterRoutes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, tsServer, err := createListener(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if tsServer != nil {
		defer tsServer.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp server listening", "addr", ln.Addr().String(), "tools", len(registry.List()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// createListener returns the listener to serve on. With tailscale enabled the
// server joins the tailnet and, with funnel, is exposed publicly over HTTPS.
func createListener(ctx context.Context, cfg *Config, logger *slog.Logger) (net.Listener, *tsnet.Server, error) {
	if !cfg.Tailscale.Enabled {
		ln, err := net.Listen("tcp", cfg.Server.HTTPAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("listening on %s: %w", cfg.Server.HTTPAddr, err)
		}
		return ln, nil, nil
	}

	stateDir, err := resolveTailscaleStateDir(cfg.Tailscale.StateDir)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey := cfg.Tailscale.AuthKey
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}

	ts := &tsnet.Server{
		Hostname:  cfg.Tailscale.Hostname,
		Dir:       stateDir,
		Ephemeral: cfg.Tailscale.Ephemeral,
		AuthKey:   authKey,
	}

	status, err := ts.Up(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("starting tailscale node: %w", err)
	}

	var dnsName string
	if status.Self != nil {
		dnsName = strings.TrimSuffix(status.Self.DNSName, ".")
	}
	logger.Info("tailscale node ready", "hostname", cfg.Tailscale.Hostname, "dns_name", dnsName)

	if cfg.Tailscale.Funnel {
		logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := ts.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = ts.Close()
			return nil, nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		if dnsName != "" {
			logger.Info("mcp endpoint", "url", "https://"+dnsName+"/mcp")
		}
		return ln, ts, nil
	}

	ln, err := ts.Listen("tcp", ":80")
	if err != nil {
		_ = ts.Close()
		return nil, nil, fmt.Errorf("listening on tailscale port: %w", err)
	}
	return ln, ts, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "chatlingo-mcp", "tailscale"), nil
}

// buildVerifier assembles the token verifier chain from config.
func buildVerifier(cfg AuthConfig) auth.TokenVerifier {
	var verifiers []auth.TokenVerifier
	if cfg.Token != "" {
		verifiers = append(verifiers, auth.NewStaticVerifier(cfg.Token, "mcp-client"))
	}
	if cfg.JWTSecret != "" {
		verifiers = append(verifiers, auth.NewJWTVerifier([]byte(cfg.JWTSecret)))
	}
	if len(verifiers) == 0 {
		return nil
	}
	return auth.NewChainVerifier(verifiers...)
}

const exampleConfig = `# chatlingo MCP server configuration

[server]
http_addr = "0.0.0.0:8086"

[auth]
token = "${AUTH_TOKEN}"
my_number = "${MY_NUMBER}"
# jwt_secret = "${JWT_SECRET}"

[backend]
url = "http://localhost:8090"
# token defaults to auth.token when unset
# token = "${BACKEND_TOKEN}"

[tailscale]
enabled = false
hostname = "chatlingo-mcp"
funnel = false
# state_dir = "/var/lib/chatlingo-mcp/tailscale"
# auth_key = "${TS_AUTHKEY}"
ephemeral = false

[logging]
level = "info"
format = "text"
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

func setupLogger(cfg LoggingConfig) *slog.Logger {
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

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
