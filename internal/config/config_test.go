package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func setRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "admin_password")
	t.Setenv("JWT_SECRET_KEY", "jwt")
}

func clearOptional(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_TYPE", "DATABASE_NAME", "SQLITE_PATH", "POSTGRES_DSN",
		"SESSION_MAX_AGE", "JWT_TTL", "MODEL_PATH", "STATIC_DIR", "VISUALIZATION_IMAGES",
		"PASSWORD_HASH_ITERATIONS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearOptional(t)
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SQLite, cfg.DatabaseType)
	assert.Equal(t, filepath.Join("data", "users.db"), cfg.SQLitePath)
	assert.Equal(t, 86400, cfg.SessionMaxAge)
	assert.Equal(t, 24*time.Hour, cfg.JwtTTL)
	assert.Equal(t, defaultHashIterations, cfg.HashIterations)
	assert.Equal(t, []string{"static/images/image1.png", "static/images/image2.png"}, cfg.VisualizationImages)
	assert.Equal(t, []byte("jwt"), cfg.JwtKey)
}

func TestLoadConfig_RequiresSecrets(t *testing.T) {
	chdir(t, t.TempDir())
	clearOptional(t)

	for _, key := range []string{"SESSION_SECRET", "ADMIN_PASSWORD", "JWT_SECRET_KEY"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_Postgres(t *testing.T) {
	chdir(t, t.TempDir())
	clearOptional(t)
	setRequired(t)
	t.Setenv("DATABASE_TYPE", "postgres")

	_, err := LoadConfig()
	require.Error(t, err, "POSTGRES_DSN is required")

	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost/db?sslmode=disable")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Postgres, cfg.DatabaseType)
	assert.Empty(t, cfg.SQLitePath)
}

func TestLoadConfig_RejectsUnknownDatabase(t *testing.T) {
	chdir(t, t.TempDir())
	clearOptional(t)
	setRequired(t)
	t.Setenv("DATABASE_TYPE", "mongodb")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	clearOptional(t)
	setRequired(t)
	os.Unsetenv("PORT")
	os.Unsetenv("MODEL_PATH")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9999\nMODEL_PATH=m.json\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "m.json", cfg.ModelPath)
}

func TestLoadConfig_InvalidIterations(t *testing.T) {
	chdir(t, t.TempDir())
	clearOptional(t)
	setRequired(t)
	t.Setenv("PASSWORD_HASH_ITERATIONS", "many")

	_, err := LoadConfig()
	assert.Error(t, err)
}
