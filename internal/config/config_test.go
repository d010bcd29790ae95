package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URI", "http://localhost:8000/api/auth/callback")
	t.Setenv("SECRET_KEY", "signing-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.FrontendURL != "http://localhost:3000" {
		t.Errorf("FrontendURL = %q", cfg.Server.FrontendURL)
	}
	if cfg.Token.Lifetime != 30*24*time.Hour {
		t.Errorf("Lifetime = %v, want 30 days", cfg.Token.Lifetime)
	}
	if cfg.AI.Provider != "anthropic" {
		t.Errorf("Provider = %q", cfg.AI.Provider)
	}
}

func TestLoadTokenLifetime(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token.Lifetime != time.Hour {
		t.Errorf("Lifetime = %v, want 1h", cfg.Token.Lifetime)
	}
}

func TestLoadRejectsBadLifetime(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric lifetime")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing-client",
			mutate:  func(c *Config) { c.Google.ClientID = "" },
			wantErr: "GOOGLE_CLIENT_ID",
		},
		{
			name:    "missing-redirect",
			mutate:  func(c *Config) { c.Google.RedirectURI = "" },
			wantErr: "GOOGLE_REDIRECT_URI",
		},
		{
			name:    "missing-secret",
			mutate:  func(c *Config) { c.Token.Secret = "" },
			wantErr: "SECRET_KEY",
		},
		{
			name:    "bad-provider",
			mutate:  func(c *Config) { c.AI.Provider = "bard" },
			wantErr: "AI_PROVIDER",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Google: GoogleConfig{
					ClientID:     "id",
					ClientSecret: "secret",
					RedirectURI:  "http://localhost/cb",
				},
				Token: TokenConfig{Secret: "s"},
				AI:    AIConfig{Provider: "openai"},
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate = %v, want mention of %s", err, tc.wantErr)
			}
		})
	}
}
