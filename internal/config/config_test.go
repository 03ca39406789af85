package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/emode/internal/progress"
)

var envKeys = []string{
	"PORT", "LOG_LEVEL", "APP_ENV", "DATABASE_PATH", "STORAGE_BACKEND", "POSTGRES_URL",
	"JWT_SECRET", "JWT_EXPIRES_DAYS", "COOKIE_NAME", "ANON_COOKIE_NAME", "CLIENT_ORIGIN",
	"LAUNCH_DATE", "CATALOG_FILE", "SHARE_URL", "DISCORD_WEBHOOK_ID", "DISCORD_WEBHOOK_TOKEN",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, 14, cfg.JWTExpiresDays)
	assert.True(t, cfg.LaunchDate.Equal(progress.DefaultLaunchDate))
	assert.Equal(t, progress.DefaultShareURL, cfg.ShareURL)
	assert.False(t, cfg.Production())
	assert.False(t, cfg.DiscordEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "Memory")
	t.Setenv("JWT_EXPIRES_DAYS", "3")
	t.Setenv("LAUNCH_DATE", "2026-01-05")
	t.Setenv("DISCORD_WEBHOOK_ID", "1")
	t.Setenv("DISCORD_WEBHOOK_TOKEN", "t")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, 3, cfg.JWTExpiresDays)
	assert.True(t, cfg.LaunchDate.Equal(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cfg.DiscordEnabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "launch date", env: map[string]string{"LAUNCH_DATE": "21/07/2025"}},
		{name: "jwt days", env: map[string]string{"JWT_EXPIRES_DAYS": "soon"}},
		{name: "backend", env: map[string]string{"STORAGE_BACKEND": "redis"}},
		{name: "postgres without url", env: map[string]string{"STORAGE_BACKEND": "postgres"}},
		{name: "production default secret", env: map[string]string{"APP_ENV": "production"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
