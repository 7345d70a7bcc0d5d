package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server settings in correct types
type Config struct {
	Port              string
	MaxConcurrentJobs int
	DownloadDir       string
	TempDir           string
	FFmpegDir         string
	Retention         time.Duration
	SweepInterval     time.Duration
	ServeGrace        time.Duration
	ProgressInterval  time.Duration
	InfoCacheTTL      time.Duration
	AllowedOrigins    []string
	RateLimitPerSec   float64
}

// Load: The only way to get config in the app
func Load() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", ":8080"),
		MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 3),
		DownloadDir:       getEnv("DOWNLOAD_DIR", "downloads"),
		TempDir:           getEnv("TEMP_DIR", "temp"),
		FFmpegDir:         getEnv("FFMPEG_DIR", "static/ffmpeg"),
		Retention:         time.Duration(getEnvAsInt("RETENTION_MINUTES", 15)) * time.Minute,
		SweepInterval:     time.Duration(getEnvAsInt("SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
		ServeGrace:        time.Duration(getEnvAsInt("SERVE_GRACE_SECONDS", 120)) * time.Second,
		ProgressInterval:  time.Duration(getEnvAsInt("PROGRESS_INTERVAL_MS", 300)) * time.Millisecond,
		InfoCacheTTL:      time.Duration(getEnvAsInt("INFO_CACHE_TTL_MINUTES", 5)) * time.Minute,
		AllowedOrigins:    getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerSec:   float64(getEnvAsInt("RATE_LIMIT_PER_SEC", 10)),
	}

	validate(cfg)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	str := getEnv(key, "")
	if val, err := strconv.Atoi(str); err == nil {
		return val
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(str, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// validate ensures the server won't crash due to misconfiguration
func validate(cfg *Config) {
	if cfg.MaxConcurrentJobs < 1 {
		log.Println("warning: MAX_CONCURRENT_JOBS must be at least 1, resetting to 3")
		cfg.MaxConcurrentJobs = 3
	}
	if cfg.ProgressInterval < 100*time.Millisecond {
		log.Println("warning: PROGRESS_INTERVAL_MS below 100, resetting to 300")
		cfg.ProgressInterval = 300 * time.Millisecond
	}
	if cfg.Retention < time.Minute {
		log.Println("warning: RETENTION_MINUTES below 1, resetting to 15")
		cfg.Retention = 15 * time.Minute
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 10
	}
}
