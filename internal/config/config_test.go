package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 3, cfg.MaxConcurrentJobs)
	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, 15*time.Minute, cfg.Retention)
	assert.Equal(t, 300*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("MAX_CONCURRENT_JOBS", "5")
	t.Setenv("RETENTION_MINUTES", "30")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, 5, cfg.MaxConcurrentJobs)
	assert.Equal(t, 30*time.Minute, cfg.Retention)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestValidateResetsBadValues(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_JOBS", "0")
	t.Setenv("PROGRESS_INTERVAL_MS", "5")
	t.Setenv("RETENTION_MINUTES", "0")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxConcurrentJobs)
	assert.Equal(t, 300*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, 15*time.Minute, cfg.Retention)
}
