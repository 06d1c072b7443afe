package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8080",
		PlatformBaseURL: "https://learn.reboot01.com",
		RequestTimeout:  30 * time.Second,
		SQLiteDBPath:    "./data/test.db",
		SessionTTL:      12 * time.Hour,
		SweepInterval:   10 * time.Minute,
		LoginRateLimit:  5,
		LoginRateWindow: time.Minute,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "non-numeric port",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errContains: "invalid port 'abc'",
		},
		{
			name:        "port out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errContains: "must be between 1 and 65535",
		},
		{
			name:        "bad platform URL",
			mutate:      func(c *Config) { c.PlatformBaseURL = "not a url" },
			wantErr:     true,
			errContains: "invalid platform base URL",
		},
		{
			name:        "non-http scheme",
			mutate:      func(c *Config) { c.PlatformBaseURL = "ftp://learn.example.com" },
			wantErr:     true,
			errContains: "invalid platform base URL",
		},
		{
			name:        "empty db path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "  " },
			wantErr:     true,
			errContains: "sqlite db path",
		},
		{
			name:        "negative session TTL",
			mutate:      func(c *Config) { c.SessionTTL = -time.Minute },
			wantErr:     true,
			errContains: "session TTL",
		},
		{
			name:        "zero rate limit",
			mutate:      func(c *Config) { c.LoginRateLimit = 0 },
			wantErr:     true,
			errContains: "login rate limit",
		},
		{
			name: "multiple problems collected",
			mutate: func(c *Config) {
				c.Port = "abc"
				c.SessionTTL = 0
			},
			wantErr:     true,
			errContains: "; ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("Validate() = %q, want substring %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	// Blank values fall through to the defaults.
	t.Setenv("PORT", "")
	t.Setenv("PLATFORM_BASE_URL", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.PlatformBaseURL != "https://learn.reboot01.com" {
		t.Errorf("PlatformBaseURL = %q", cfg.PlatformBaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEndpoints(t *testing.T) {
	cfg := validConfig()

	if got := cfg.SigninEndpoint(); got != "https://learn.reboot01.com/api/auth/signin" {
		t.Errorf("SigninEndpoint = %q", got)
	}
	if got := cfg.GraphQLEndpoint(); got != "https://learn.reboot01.com/api/graphql-engine/v1/graphql" {
		t.Errorf("GraphQLEndpoint = %q", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PLATFORM_BASE_URL", "https://learn.example.com/")
	t.Setenv("SESSION_TTL", "1h")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	// Trailing slash is trimmed so the fixed paths join cleanly.
	if cfg.PlatformBaseURL != "https://learn.example.com" {
		t.Errorf("PlatformBaseURL = %q", cfg.PlatformBaseURL)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
}
