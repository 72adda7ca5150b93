package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Provider identity, recorded in result metadata.
	ProviderName string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxBodyBytes int64

	// Chunking defaults
	MaxTokensPerChunk int
	OverlapTokens     int
	RespectHeadings   bool
	PreserveTables    bool

	// Source probe
	ProbeSources bool

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("DOCSLICE_API_KEY"),

		ProviderName: envOr("PROVIDER_NAME", "docling"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 104857600), // 100MB, provider docs are verbose

		MaxTokensPerChunk: envInt("MAX_TOKENS_PER_CHUNK", 500),
		OverlapTokens:     envInt("OVERLAP_TOKENS", 50),
		RespectHeadings:   envBool("RESPECT_HEADINGS", true),
		PreserveTables:    envBool("PRESERVE_TABLES", true),

		ProbeSources: envBool("PROBE_SOURCES", true),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 104857600
	}
	if cfg.MaxTokensPerChunk <= 0 {
		cfg.MaxTokensPerChunk = 500
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCSLICE_API_KEY is required")
	}
	if c.OverlapTokens >= c.MaxTokensPerChunk {
		return fmt.Errorf("OVERLAP_TOKENS (%d) must be smaller than MAX_TOKENS_PER_CHUNK (%d)",
			c.OverlapTokens, c.MaxTokensPerChunk)
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
