package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RESUME_STORAGE", "local")
	t.Setenv("FRONTEND_URL", "https://campus.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://admin.example.com ,,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.ResumeStorage)
	assert.Equal(t, []string{"https://campus.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Duration(cfg.RateLimitWindowSeconds)*time.Second, cfg.RateLimitWindow())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RESUME_STORAGE", "S3")
	t.Setenv("S3_BUCKET", "resumes")
	t.Setenv("RESUME_MAX_BYTES", "1048576")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("RATE_LIMIT_WRITE_THRESHOLD", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.ResumeStorage)
	assert.Equal(t, int64(1<<20), cfg.ResumeMaxBytes)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, 20, cfg.RateLimitWriteThreshold)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("RESUME_STORAGE", "ftp")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("RESUME_STORAGE", "s3")
		t.Setenv("S3_BUCKET", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("non positive size", func(t *testing.T) {
		t.Setenv("RESUME_STORAGE", "local")
		t.Setenv("RESUME_MAX_BYTES", "0")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
