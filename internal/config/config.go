package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Platform API paths, fixed by the remote service.
const (
	signinPath  = "/api/auth/signin"
	graphqlPath = "/api/graphql-engine/v1/graphql"
)

type Config struct {
	// HTTP server
	Port string

	// Remote learning platform
	PlatformBaseURL string
	RequestTimeout  time.Duration

	// Session store
	SQLiteDBPath  string
	SessionTTL    time.Duration
	SweepInterval time.Duration

	// Login rate limiting
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		PlatformBaseURL: strings.TrimRight(getEnv("PLATFORM_BASE_URL", "https://learn.reboot01.com"), "/"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/skillboard.db"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 12*time.Hour),
		SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
	}
}

// SigninEndpoint is the auth collaborator's fixed URL.
func (c *Config) SigninEndpoint() string {
	return c.PlatformBaseURL + signinPath
}

// GraphQLEndpoint is the query client's fixed URL.
func (c *Config) GraphQLEndpoint() string {
	return c.PlatformBaseURL + graphqlPath
}

// Validate checks the configuration and returns one error collecting
// every problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if u, err := url.Parse(c.PlatformBaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Sprintf("invalid platform base URL '%s'", c.PlatformBaseURL))
	}

	if strings.TrimSpace(c.SQLiteDBPath) == "" {
		errs = append(errs, "sqlite db path must not be empty")
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid session TTL %s: must be positive", c.SessionTTL))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Sprintf("invalid sweep interval %s: must be positive", c.SweepInterval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid request timeout %s: must be positive", c.RequestTimeout))
	}
	if c.LoginRateLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid login rate limit %d: must be at least 1", c.LoginRateLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
