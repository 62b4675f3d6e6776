package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "JWT_SECRET", "SESSION_TTL", "MAX_UPLOAD_MB", "ALLOWED_ORIGINS", "STATUS_SWEEP_CRON", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_TTL", "168h")
	t.Setenv("MAX_UPLOAD_MB", "10")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://bills.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 8080 || cfg.SessionTTL != 168*time.Hour || cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.JWTSecret == "" || cfg.OAuthStateSecret != cfg.JWTSecret {
		t.Errorf("secrets not defaulted: %q / %q", cfg.JWTSecret, cfg.OAuthStateSecret)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://bills.example.com" {
		t.Errorf("AllowedOrigins = %q", cfg.AllowedOrigins)
	}
	if cfg.GoogleEnabled() {
		t.Error("GoogleEnabled without credentials")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"bad port":             {"PORT": "http"},
		"bad ttl":              {"SESSION_TTL": "a week"},
		"bad upload limit":     {"MAX_UPLOAD_MB": "0"},
		"production no secret": {"APP_ENV": "production", "JWT_SECRET": ""},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PORT", "8080")
			t.Setenv("SESSION_TTL", "1h")
			t.Setenv("MAX_UPLOAD_MB", "10")
			t.Setenv("APP_ENV", "development")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
