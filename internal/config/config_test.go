package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mferrari98/cont-portal/internal/timeouts"
)

// validConfig returns a minimal passing configuration for mutation in tests.
func validConfig() *Config {
	return &Config{
		Port:            "10000",
		LogLevel:        "info",
		SourcePath:      "/data/guia.xlsx",
		FetchMaxRetries: 5,
		RefreshInterval: 15 * time.Minute,
		MetricsUsername: "prometheus",
	}
}

func TestLoad(t *testing.T) {
	// Set required environment variables
	_ = os.Setenv(EnvSourcePath, "/data/guia.xlsx")
	defer func() { _ = os.Unsetenv(EnvSourcePath) }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SourcePath != "/data/guia.xlsx" {
		t.Errorf("Expected source path '/data/guia.xlsx', got '%s'", cfg.SourcePath)
	}

	// Check defaults
	if cfg.Port != "10000" {
		t.Errorf("Expected default port '10000', got '%s'", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.FetchMaxRetries != 5 {
		t.Errorf("Expected default max retries 5, got %d", cfg.FetchMaxRetries)
	}
	if cfg.RefreshInterval != timeouts.RefreshDefault {
		t.Errorf("Expected default refresh interval %v, got %v", timeouts.RefreshDefault, cfg.RefreshInterval)
	}
	if cfg.MetricsUsername != "prometheus" {
		t.Errorf("Expected default metrics username 'prometheus', got '%s'", cfg.MetricsUsername)
	}
	if cfg.MetricsAuthEnabled {
		t.Error("Metrics auth should default to disabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	_ = os.Setenv(EnvSourceURL, "http://example.test/guia/interna.xlsx")
	_ = os.Setenv(EnvPort, "8099")
	_ = os.Setenv(EnvFetchMaxRetries, "2")
	_ = os.Setenv(EnvRefreshInterval, "0")
	defer func() {
		_ = os.Unsetenv(EnvSourceURL)
		_ = os.Unsetenv(EnvPort)
		_ = os.Unsetenv(EnvFetchMaxRetries)
		_ = os.Unsetenv(EnvRefreshInterval)
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SourceURL != "http://example.test/guia/interna.xlsx" {
		t.Errorf("SourceURL = %q", cfg.SourceURL)
	}
	if cfg.Port != "8099" {
		t.Errorf("Port = %q, want 8099", cfg.Port)
	}
	if cfg.FetchMaxRetries != 2 {
		t.Errorf("FetchMaxRetries = %d, want 2", cfg.FetchMaxRetries)
	}
	if cfg.RefreshEnabled() {
		t.Error("REFRESH_INTERVAL=0 should disable the refresh job")
	}
}

func TestLoadRequiresSource(t *testing.T) {
	_ = os.Unsetenv(EnvSourceURL)
	_ = os.Unsetenv(EnvSourcePath)
	_ = os.Unsetenv(EnvSourceS3Bucket)
	_ = os.Unsetenv(EnvSourceS3Key)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() without any source should fail")
	}
	if !strings.Contains(err.Error(), "directory source is required") {
		t.Errorf("error = %v, want mention of the missing source", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid file source",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid http source",
			mutate: func(c *Config) {
				c.SourcePath = ""
				c.SourceURL = "http://example.test/guia.xlsx"
			},
			wantErr: false,
		},
		{
			name: "valid s3 source",
			mutate: func(c *Config) {
				c.SourcePath = ""
				c.SourceS3Bucket = "directorio"
				c.SourceS3Key = "guia/interna.xlsx"
			},
			wantErr: false,
		},
		{
			name: "missing port",
			mutate: func(c *Config) {
				c.Port = ""
			},
			wantErr:     true,
			errContains: "PORT",
		},
		{
			name: "no source configured",
			mutate: func(c *Config) {
				c.SourcePath = ""
			},
			wantErr:     true,
			errContains: "directory source is required",
		},
		{
			name: "two sources configured",
			mutate: func(c *Config) {
				c.SourceURL = "http://example.test/guia.xlsx"
			},
			wantErr:     true,
			errContains: "only one directory source",
		},
		{
			name: "s3 bucket without key",
			mutate: func(c *Config) {
				c.SourcePath = ""
				c.SourceS3Bucket = "directorio"
			},
			wantErr:     true,
			errContains: "SOURCE_S3_BUCKET and SOURCE_S3_KEY",
		},
		{
			name: "negative retries",
			mutate: func(c *Config) {
				c.FetchMaxRetries = -1
			},
			wantErr:     true,
			errContains: "FETCH_MAX_RETRIES",
		},
		{
			name: "refresh interval below minimum",
			mutate: func(c *Config) {
				c.RefreshInterval = 30 * time.Second
			},
			wantErr:     true,
			errContains: "REFRESH_INTERVAL",
		},
		{
			name: "refresh disabled is fine",
			mutate: func(c *Config) {
				c.RefreshInterval = 0
			},
			wantErr: false,
		},
		{
			name: "negative refresh interval",
			mutate: func(c *Config) {
				c.RefreshInterval = -time.Minute
			},
			wantErr:     true,
			errContains: "REFRESH_INTERVAL",
		},
		{
			name: "metrics auth without password",
			mutate: func(c *Config) {
				c.MetricsAuthEnabled = true
			},
			wantErr:     true,
			errContains: "METRICS_PASSWORD",
		},
		{
			name: "metrics auth with password",
			mutate: func(c *Config) {
				c.MetricsAuthEnabled = true
				c.MetricsPassword = "secret"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errContains != "" && err != nil {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %v, want error containing %q", err, tt.errContains)
				}
			}
		})
	}
}

func TestRefreshEnabled(t *testing.T) {
	cfg := validConfig()
	if !cfg.RefreshEnabled() {
		t.Error("RefreshEnabled() = false with a 15m interval")
	}

	cfg.RefreshInterval = 0
	if cfg.RefreshEnabled() {
		t.Error("RefreshEnabled() = true with a zero interval")
	}
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue time.Duration
		want         time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DURATION",
			value:        "5s",
			defaultValue: 1 * time.Second,
			want:         5 * time.Second,
		},
		{
			name:         "invalid duration",
			key:          "TEST_DURATION",
			value:        "invalid",
			defaultValue: 1 * time.Second,
			want:         1 * time.Second,
		},
		{
			name:         "empty value",
			key:          "TEST_DURATION",
			value:        "",
			defaultValue: 1 * time.Second,
			want:         1 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
				defer func() { _ = os.Unsetenv(tt.key) }()
			}

			got := getDurationEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getDurationEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"true value", "true", false, true},
		{"numeric true", "1", false, true},
		{"false value", "false", true, false},
		{"invalid value", "yes please", false, false},
		{"empty value", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				_ = os.Setenv("TEST_BOOL", tt.value)
				defer func() { _ = os.Unsetenv("TEST_BOOL") }()
			}

			got := getBoolEnv("TEST_BOOL", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getBoolEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
