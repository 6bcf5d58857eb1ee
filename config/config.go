package config

import (
	"fmt"
	"os"
)

// Config carries the process-level settings read from the environment.
type Config struct {
	Env         string
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string
}

// Load reads configuration from environment variables. DATABASE_URL and
// JWT_SECRET are required; the rest have development defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:         getenv("APP_ENV", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
