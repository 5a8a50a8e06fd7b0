package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DB_PATH", "LISTEN_ADDR", "SESSION_SECRET", "TOKEN_KEY", "LOG_LEVEL", "ENV", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "user_admin.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "dev-secret-change-in-production", cfg.SessionSecret)
	assert.Equal(t, insecureKey, cfg.TokenKey)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100.0, cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Len(t, cfg.Warnings, 2)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/panel.sqlite")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("TOKEN_KEY", "aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00")
	t.Setenv("RATE_LIMIT_RPS", "10")
	t.Setenv("RATE_LIMIT_BURST", "20")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/panel.sqlite", cfg.DBPath)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_ProductionRejectsInsecureDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cret")
	_, err = LoadFromEnv()
	require.Error(t, err, "TOKEN_KEY is still the insecure default")

	t.Setenv("TOKEN_KEY", "aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.level)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nDB_PATH=/tmp/from-dotenv.sqlite\nSESSION_SECRET=\"quoted\"\n\nBROKEN LINE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "/tmp/from-dotenv.sqlite", os.Getenv("DB_PATH"))
	assert.Equal(t, "quoted", os.Getenv("SESSION_SECRET"))
}

func TestLoadDotEnv_EnvVarsTakePrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/from-env.sqlite")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=/tmp/from-dotenv.sqlite\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "/tmp/from-env.sqlite", os.Getenv("DB_PATH"))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
