// internal/config/config.go
//
// Typed service configuration read from the environment.
// main.go loads .env (godotenv) before calling Load, so values from the
// file and the real environment are treated the same.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/emode/internal/progress"
)

// Storage backends for player progress.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const dateLayout = "2006-01-02"

// Config holds all service configuration.
type Config struct {
	Port     string
	LogLevel string
	Env      string // "development" or "production"

	// Storage
	DatabasePath   string
	StorageBackend string
	PostgresURL    string

	// Auth
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	AnonCookieName string
	ClientOrigin   string

	// Game
	LaunchDate  time.Time
	CatalogFile string // empty uses the embedded catalog
	ShareURL    string

	// Share delivery
	DiscordWebhookID    string
	DiscordWebhookToken string
}

// Production reports whether cookies must be Secure/SameSite=None.
func (c *Config) Production() bool { return c.Env == "production" }

// DiscordEnabled reports whether the Discord webhook is configured.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordWebhookID != "" && c.DiscordWebhookToken != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),

		DatabasePath:   getEnv("DATABASE_PATH", "data/emode.db"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		PostgresURL:    os.Getenv("POSTGRES_URL"),

		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: 14,
		CookieName:     getEnv("COOKIE_NAME", "emode_token"),
		AnonCookieName: getEnv("ANON_COOKIE_NAME", "emode_anon"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		LaunchDate:  progress.DefaultLaunchDate,
		CatalogFile: os.Getenv("CATALOG_FILE"),
		ShareURL:    getEnv("SHARE_URL", progress.DefaultShareURL),

		DiscordWebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		DiscordWebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),
	}

	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("JWT_EXPIRES_DAYS: invalid value %q", v)
		}
		cfg.JWTExpiresDays = n
	}
	if v := os.Getenv("LAUNCH_DATE"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("LAUNCH_DATE: %w", err)
		}
		cfg.LaunchDate = t
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("POSTGRES_URL is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", cfg.StorageBackend)
	}

	if cfg.Production() && cfg.JWTSecret == "dev_secret_change_me" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
