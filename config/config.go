package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client
type Config struct {
	APIBaseURL  string
	TokenFile   string
	HTTPTimeout time.Duration
	Environment string
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file if not in production
	// We don't return error here because in production .env might not exist
	// and we rely on system environment variables
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment: env,
		APIBaseURL:  os.Getenv("EDT_API_BASE_URL"),
		TokenFile:   os.Getenv("EDT_TOKEN_FILE"),
	}

	// Set defaults
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:5000"
	}
	if cfg.TokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.TokenFile = filepath.Join(home, ".edtclient", "token.json")
	}

	cfg.HTTPTimeout = 10 * time.Second
	if s := os.Getenv("EDT_HTTP_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			log.Printf("Warning: invalid EDT_HTTP_TIMEOUT %q, using default: %v", s, err)
		} else {
			cfg.HTTPTimeout = d
		}
	}

	return cfg, nil
}
