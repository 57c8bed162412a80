package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crinf-backoffice/internal/config"
	"crinf-backoffice/internal/imageedit"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "backoffice", cfg.SupabaseStorageBucket)
	assert.Equal(t, "backoffice_events", cfg.EventsTable)
	assert.Equal(t, 30*time.Minute, cfg.ImageSessionTTL)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Equal(t, imageedit.DefaultMaxPixels, cfg.MaxImagePixels)
	assert.Equal(t, "backup_crinf", cfg.SnapshotPrefix)
	assert.Equal(t, "preferencias_crinf", cfg.PreferencesPrefix)
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ConfigFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backoffice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
JWT_SECRET: from-file
PORT: "9000"
IMAGE_SESSION_TTL: 5m
SUPABASE_URL: https://project.supabase.co
SUPABASE_PUBLISHABLE_KEY: key
`), 0o600))
	t.Setenv("PORT", "9100")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.ImageSessionTTL)
	assert.True(t, cfg.StorageEnabled())
}

func TestValidate(t *testing.T) {
	valid := config.Config{JWTSecret: "s", ImageSessionTTL: time.Minute, MaxUploadBytes: 1, MaxImagePixels: 1}
	assert.NoError(t, valid.Validate())

	noKey := valid
	noKey.SupabaseURL = "https://project.supabase.co"
	assert.Error(t, noKey.Validate())

	noTTL := valid
	noTTL.ImageSessionTTL = 0
	assert.Error(t, noTTL.Validate())

	noPixels := valid
	noPixels.MaxImagePixels = 0
	assert.Error(t, noPixels.Validate())
}
