package config

import (
	"fmt"
	"time"

	"github.com/RishiKendai/quill/internal/configs/env"
	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/RishiKendai/quill/internal/stream"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisDB                 int
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration
	MaxRetries              int

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentScans int
	Workers            int

	// Fingerprinting
	NgramSize  int
	WindowSize int

	// Scan
	ScanTimeout       time.Duration
	MinSharedHashes   int
	FingerprintCutoff float64
	SignificantScore  float64
	StatusTTL         time.Duration
	CacheMaxDocuments int

	// Logging
	LogLevel  string
	LogPretty bool

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = env.GetEnvInt("REDIS_DB", 0)
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "documents:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "documents:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "documents:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_HOURS", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour
	cfg.MaxRetries = env.GetEnvInt("STREAM_MAX_RETRIES", 3)

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "quill")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentScans = env.GetEnvInt("MAX_CONCURRENT_SCANS", 5)
	cfg.Workers = env.GetEnvInt("WORKERS", 0) // 0 sizes the pool from the CPU count

	// Fingerprinting
	cfg.NgramSize = env.GetEnvInt("NGRAM_SIZE", fingerprint.DefaultNgramSize)
	cfg.WindowSize = env.GetEnvInt("WINDOW_SIZE", fingerprint.DefaultWindowSize)

	// Scan
	timeoutMinutes := env.GetEnvInt("SCAN_TIMEOUT_MINUTES", 10)
	cfg.ScanTimeout = time.Duration(timeoutMinutes) * time.Minute
	cfg.MinSharedHashes = env.GetEnvInt("MIN_SHARED_HASHES", 2)
	cfg.FingerprintCutoff = env.GetEnvFloat("FINGERPRINT_CUTOFF", 0.05)
	cfg.SignificantScore = env.GetEnvFloat("SIGNIFICANT_SCORE", 0.15)
	statusHours := env.GetEnvInt("STATUS_TTL_HOURS", 12)
	cfg.StatusTTL = time.Duration(statusHours) * time.Hour
	cfg.CacheMaxDocuments = env.GetEnvInt("CACHE_MAX_DOCUMENTS", 10000)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogPretty = env.GetEnvBool("LOG_PRETTY", false)

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentScans <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_SCANS must be greater than 0")
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must not be negative")
	}
	if err := fingerprint.ValidateSizes(c.NgramSize, c.WindowSize); err != nil {
		return fmt.Errorf("invalid NGRAM_SIZE/WINDOW_SIZE: %w", err)
	}
	if c.MinSharedHashes <= 0 {
		return fmt.Errorf("MIN_SHARED_HASHES must be greater than 0")
	}
	if c.FingerprintCutoff < 0 || c.FingerprintCutoff > 1 {
		return fmt.Errorf("FINGERPRINT_CUTOFF must be between 0 and 1")
	}
	if c.SignificantScore < 0 || c.SignificantScore > 1 {
		return fmt.Errorf("SIGNIFICANT_SCORE must be between 0 and 1")
	}
	if c.CacheMaxDocuments <= 0 {
		return fmt.Errorf("CACHE_MAX_DOCUMENTS must be greater than 0")
	}
	if c.ScanTimeout <= 0 {
		return fmt.Errorf("SCAN_TIMEOUT_MINUTES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_HOURS must be greater than 0")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("STREAM_MAX_RETRIES must not be negative")
	}
	if horizon := stream.PendingHorizon(c.MaxRetries); c.StreamRetentionDuration <= horizon {
		return fmt.Errorf("STREAM_RETENTION_HOURS must exceed the pending horizon of %s for STREAM_MAX_RETRIES=%d", horizon, c.MaxRetries)
	}
	return nil
}
