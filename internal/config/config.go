package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/tocheck/internal/checklist"
)

type Config struct {
	// Heading that marks the checklist section.
	Title string

	Port string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes int64
	MaxBatchFiles  int

	// Batch fan-out
	WorkerCount int

	// Rolling window for /api/stats
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Title: envOr("TOCHECK_TITLE", checklist.DefaultTitle),

		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("TOCHECK_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB
		MaxBatchFiles:  envInt("MAX_BATCH_FILES", 20),

		WorkerCount: envInt("WORKER_COUNT", 4),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.MaxBatchFiles <= 0 {
		cfg.MaxBatchFiles = 20
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings the HTTP service needs. The CLI only uses Title.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TOCHECK_API_KEY is required")
	}
	if c.Title == "" {
		return fmt.Errorf("TOCHECK_TITLE must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
