// ABOUTME: Configuration loading for the chatlingo MCP server
// ABOUTME: Loads TOML config with environment variable expansion, or falls back to env vars

package main

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Backend   BackendConfig   `toml:"backend"`
	Tailscale TailscaleConfig `toml:"tailscale"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	HTTPAddr string `toml:"http_addr"`
}

type AuthConfig struct {
	Token     string `toml:"token"`
	JWTSecret string `toml:"jwt_secret"`
	MyNumber  string `toml:"my_number"`
}

type BackendConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type TailscaleConfig struct {
	Enabled   bool   `toml:"enabled"`
	Hostname  string `toml:"hostname"`
	Funnel    bool   `toml:"funnel"`
	StateDir  string `toml:"state_dir"`
	AuthKey   string `toml:"auth_key"`
	Ephemeral bool   `toml:"ephemeral"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads config from the given path, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables (${VAR} syntax)
	expanded := expandEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a config purely from environment variables so the server
// can run without a config file.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{HTTPAddr: os.Getenv("MCP_HTTP_ADDR")},
		Auth: AuthConfig{
			Token:     os.Getenv("AUTH_TOKEN"),
			JWTSecret: os.Getenv("JWT_SECRET"),
			MyNumber:  os.Getenv("MY_NUMBER"),
		},
		Backend: BackendConfig{
			URL:   os.Getenv("BACKEND_URL"),
			Token: os.Getenv("BACKEND_TOKEN"),
		},
		Logging: LoggingConfig{
			Level:  os.Getenv("LOG_LEVEL"),
			Format: os.Getenv("LOG_FORMAT"),
		},
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "0.0.0.0:8086"
	}
	if c.Backend.URL == "" {
		c.Backend.URL = "http://localhost:8090"
	}
	if c.Backend.Token == "" {
		c.Backend.Token = c.Auth.Token
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "chatlingo-mcp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Auth.Token == "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.token or auth.jwt_secret is required (set AUTH_TOKEN)")
	}
	if c.Auth.MyNumber == "" {
		return fmt.Errorf("auth.my_number is required (set MY_NUMBER)")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("backend.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url must use http or https scheme")
	}
	return nil
}
