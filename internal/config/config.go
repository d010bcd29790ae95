package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Google   GoogleConfig
	Token    TokenConfig
	AI       AIConfig
	LogLevel string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr        string
	FrontendURL string
}

// GoogleConfig holds Google OAuth client settings
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// TokenConfig holds session token signing settings
type TokenConfig struct {
	Secret   string
	Lifetime time.Duration
}

// AIConfig holds generative-text provider settings
type AIConfig struct {
	Provider       string // "anthropic" or "openai"
	AnthropicKey   string
	OpenAIKey      string
	AnthropicModel string
	OpenAIModel    string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:        os.Getenv("LISTEN_ADDR"),
			FrontendURL: os.Getenv("FRONTEND_URL"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("GOOGLE_REDIRECT_URI"),
		},
		Token: TokenConfig{
			Secret: os.Getenv("SECRET_KEY"),
		},
		AI: AIConfig{
			Provider:       os.Getenv("AI_PROVIDER"),
			AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
			OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
			AnthropicModel: os.Getenv("ANTHROPIC_MODEL"),
			OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		},
		LogLevel: os.Getenv("LOG_LEVEL"),
	}

	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		cfg.Token.Lifetime = time.Duration(minutes) * time.Minute
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = "http://localhost:3000"
	}
	if c.Token.Lifetime == 0 {
		c.Token.Lifetime = 30 * 24 * time.Hour
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "anthropic"
	}
	if c.AI.AnthropicModel == "" {
		c.AI.AnthropicModel = "claude-sonnet-4-20250514"
	}
	if c.AI.OpenAIModel == "" {
		c.AI.OpenAIModel = "gpt-4-turbo-preview"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if c.Google.RedirectURI == "" {
		return fmt.Errorf("GOOGLE_REDIRECT_URI is required")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	switch c.AI.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("invalid AI_PROVIDER %q: must be anthropic or openai", c.AI.Provider)
	}
	return nil
}
