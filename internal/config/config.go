package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Dev-only fallbacks. Validate rejects them in production.
const (
	insecureAccessSecret  = "insecure-dev-access-secret"
	insecureRefreshSecret = "insecure-dev-refresh-secret"
)

type Config struct {
	AppEnv              string
	ServerPort          string
	ServerReadTimeout   time.Duration
	ServerWriteTimeout  time.Duration
	ServerIdleTimeout   time.Duration
	RequestTimeout      time.Duration
	DatabaseURL         string
	DBMaxConns          int32
	DBMinConns          int32
	AccessTokenSecret   string
	RefreshTokenSecret  string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	CommerceEndpoint    string
	CommerceAccessToken string
	ProtectedPaths      []string
	CORSOrigins         []string
	RateLimitRPM        int
	AuthRateLimitRPM    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:              strings.ToLower(getEnv("APP_ENV", "development")),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:          int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:          int32(getInt("DB_MIN_CONNS", 2)),
		AccessTokenSecret:   strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret:  strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTokenTTL:      getDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:     getDuration("REFRESH_TOKEN_TTL", 168*time.Hour),
		CommerceEndpoint:    strings.TrimSpace(os.Getenv("COMMERCE_API_ENDPOINT")),
		CommerceAccessToken: strings.TrimSpace(os.Getenv("COMMERCE_ACCESS_TOKEN")),
		ProtectedPaths:      splitCSV(getEnv("PROTECTED_PATHS", "/cart")),
		CORSOrigins:         splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:        getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:    getInt("AUTH_RATE_LIMIT_RPM", 10),
	}

	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = insecureAccessSecret
	}
	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = insecureRefreshSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.CommerceEndpoint == "" {
		return fmt.Errorf("COMMERCE_API_ENDPOINT is required")
	}

	if c.CommerceAccessToken == "" {
		return fmt.Errorf("COMMERCE_ACCESS_TOKEN is required")
	}

	if c.IsProduction() {
		if c.AccessTokenSecret == insecureAccessSecret {
			return fmt.Errorf("ACCESS_TOKEN_SECRET is required in production")
		}
		if c.RefreshTokenSecret == insecureRefreshSecret {
			return fmt.Errorf("REFRESH_TOKEN_SECRET is required in production")
		}
	}

	// A shared secret would let a refresh token verify as an access
	// token.
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if len(c.ProtectedPaths) == 0 {
		return fmt.Errorf("PROTECTED_PATHS cannot be empty")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
