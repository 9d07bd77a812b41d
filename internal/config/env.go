// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	// Directory source (exactly one backend)
	EnvSourceURL  = "SOURCE_URL"
	EnvSourcePath = "SOURCE_PATH"

	EnvSourceS3Bucket          = "SOURCE_S3_BUCKET"
	EnvSourceS3Key             = "SOURCE_S3_KEY"
	EnvSourceS3Endpoint        = "SOURCE_S3_ENDPOINT"
	EnvSourceS3Region          = "SOURCE_S3_REGION"
	EnvSourceS3AccessKeyID     = "SOURCE_S3_ACCESS_KEY_ID"
	EnvSourceS3SecretAccessKey = "SOURCE_S3_SECRET_ACCESS_KEY"

	// Fetch and refresh
	EnvFetchMaxRetries = "FETCH_MAX_RETRIES"
	EnvRefreshInterval = "REFRESH_INTERVAL"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "METRICS_USERNAME"
	EnvMetricsPassword    = "METRICS_PASSWORD"

	// Better Stack Feature
	EnvBetterStackToken    = "BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "BETTERSTACK_ENDPOINT"

	// Sentry Feature
	EnvSentryToken = "SENTRY_TOKEN"
	EnvSentryHost  = "SENTRY_HOST"
)
