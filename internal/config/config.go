// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the directory source backends and the optional integrations.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mferrari98/cont-portal/internal/timeouts"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port     string
	LogLevel string

	// Directory Source Configuration (exactly one backend)
	SourceURL  string // remote workbook over HTTP(S)
	SourcePath string // local workbook file

	// S3-compatible object storage backend
	SourceS3Bucket          string
	SourceS3Key             string
	SourceS3Endpoint        string // custom endpoint for R2/MinIO style storage
	SourceS3Region          string
	SourceS3AccessKeyID     string
	SourceS3SecretAccessKey string

	// Fetch Configuration
	FetchMaxRetries int
	RefreshInterval time.Duration // 0 disables the background refresh job

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword    string

	// Better Stack Configuration
	BetterstackToken    string
	BetterstackEndpoint string

	// Sentry Configuration
	SentryToken string // Better Stack Errors application token (empty = disabled)
	SentryHost  string // Better Stack Errors ingesting host
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:     getEnv(EnvPort, "10000"),
		LogLevel: getEnv(EnvLogLevel, "info"),

		// Directory Source Configuration
		SourceURL:  getEnv(EnvSourceURL, ""),
		SourcePath: getEnv(EnvSourcePath, ""),

		SourceS3Bucket:          getEnv(EnvSourceS3Bucket, ""),
		SourceS3Key:             getEnv(EnvSourceS3Key, ""),
		SourceS3Endpoint:        getEnv(EnvSourceS3Endpoint, ""),
		SourceS3Region:          getEnv(EnvSourceS3Region, ""),
		SourceS3AccessKeyID:     getEnv(EnvSourceS3AccessKeyID, ""),
		SourceS3SecretAccessKey: getEnv(EnvSourceS3SecretAccessKey, ""),

		// Fetch Configuration
		FetchMaxRetries: getIntEnv(EnvFetchMaxRetries, 5),
		RefreshInterval: getDurationEnv(EnvRefreshInterval, timeouts.RefreshDefault),

		// Metrics Authentication
		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		// Better Stack Configuration
		BetterstackToken:    getEnv(EnvBetterStackToken, ""),
		BetterstackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		// Sentry Configuration
		SentryToken: getEnv(EnvSentryToken, ""),
		SentryHost:  getEnv(EnvSentryHost, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	switch n := c.configuredSources(); {
	case n == 0:
		errs = append(errs, errors.New("a directory source is required: set SOURCE_URL, SOURCE_PATH or SOURCE_S3_BUCKET/SOURCE_S3_KEY"))
	case n > 1:
		errs = append(errs, errors.New("only one directory source may be configured"))
	}
	if c.hasS3Source() && (c.SourceS3Bucket == "" || c.SourceS3Key == "") {
		errs = append(errs, errors.New("SOURCE_S3_BUCKET and SOURCE_S3_KEY must both be set"))
	}

	if c.FetchMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("FETCH_MAX_RETRIES cannot be negative, got %d", c.FetchMaxRetries))
	}
	if c.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("REFRESH_INTERVAL cannot be negative, got %v", c.RefreshInterval))
	}
	if c.RefreshInterval > 0 && c.RefreshInterval < timeouts.RefreshMinimum {
		errs = append(errs, fmt.Errorf("REFRESH_INTERVAL must be at least %v or 0 to disable, got %v", timeouts.RefreshMinimum, c.RefreshInterval))
	}

	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, errors.New("METRICS_PASSWORD is required when METRICS_AUTH_ENABLED is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// configuredSources counts how many source backends carry configuration.
func (c *Config) configuredSources() int {
	n := 0
	if c.SourceURL != "" {
		n++
	}
	if c.SourcePath != "" {
		n++
	}
	if c.hasS3Source() {
		n++
	}
	return n
}

func (c *Config) hasS3Source() bool {
	return c.SourceS3Bucket != "" || c.SourceS3Key != ""
}

// RefreshEnabled reports whether the background refresh job should run.
func (c *Config) RefreshEnabled() bool {
	return c.RefreshInterval > 0
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
