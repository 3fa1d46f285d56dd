// ABOUTME: Configuration loading and parsing for the chatlingo backend
// ABOUTME: Supports YAML files with environment variable expansion and validation

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete backend configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Content  ContentConfig  `yaml:"content"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr       string   `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds API authentication configuration.
// When BearerToken is empty the API is open (local development).
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	JWTSecret   string `yaml:"jwt_secret"`
}

// ContentConfig controls content seeding on startup
type ContentConfig struct {
	SeedDisabled bool `yaml:"seed_disabled"`
}

// OpenAIConfig holds optional OpenAI-backed media engine configuration.
// When APIKey is empty, media endpoints fall back to stub engines.
type OpenAIConfig struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model"`
	VisionModel        string `yaml:"vision_model"`
}

// WhatsAppConfig holds optional WhatsApp Cloud API configuration for
// sending interactive quick-reply buttons.
type WhatsAppConfig struct {
	Token           string `yaml:"token"`
	PhoneNumberID   string `yaml:"phone_number_id"`
	GraphAPIVersion string `yaml:"graph_api_version"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration suitable for local development, with
// values taken from the environment where available.
func Default() *Config {
	cfg := &Config{
		Server:   ServerConfig{HTTPAddr: "0.0.0.0:8090"},
		Database: DatabaseConfig{Path: "app.db"},
		Auth: AuthConfig{
			BearerToken: os.Getenv("AUTH_TOKEN"),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
		},
		WhatsApp: WhatsAppConfig{
			Token:         os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in values that have sensible defaults.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "0.0.0.0:8090"
	}
	if c.Database.Path == "" {
		c.Database.Path = "app.db"
	}
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.VisionModel == "" {
		c.OpenAI.VisionModel = "gpt-4o-mini"
	}
	if c.WhatsApp.GraphAPIVersion == "" {
		c.WhatsApp.GraphAPIVersion = "v20.0"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	// WhatsApp config is all-or-nothing
	if (c.WhatsApp.Token == "") != (c.WhatsApp.PhoneNumberID == "") {
		return fmt.Errorf("whatsapp.token and whatsapp.phone_number_id must be set together")
	}

	return nil
}
