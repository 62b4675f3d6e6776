package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string // SQLite file, used when DatabaseURL is empty
	DatabaseURL  string // postgres:// connection string
	AppEnv       string
	LogLevel     string

	JWTSecret  string
	SessionTTL time.Duration

	UploadDir      string
	MaxUploadBytes int64

	AllowedOrigins []string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OAuthStateSecret   string

	// StatusSweepCron enables the background overdue sweep when non-empty.
	StatusSweepCron string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	maxMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "10"))
	if err != nil || maxMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", os.Getenv("MAX_UPLOAD_MB"))
	}

	cfg := &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./bills.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SessionTTL:         ttl,
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:     int64(maxMB) << 20,
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/callback"),
		OAuthStateSecret:   getEnv("OAUTH_STATE_SECRET", ""),
		StatusSweepCron:    getEnv("STATUS_SWEEP_CRON", ""),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	if cfg.OAuthStateSecret == "" {
		cfg.OAuthStateSecret = cfg.JWTSecret
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GoogleEnabled reports whether the external login flow is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
