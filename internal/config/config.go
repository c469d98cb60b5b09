// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all server configuration.
type Config struct {
	// Server
	ListenAddr  string
	MetricsAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// Service identity
	PublicURL string
	Version   string

	// Content locations
	DataDir    string
	UploadDir  string
	MOTDPath   string

	// Uploads
	MaxTextBytes int64

	// Search proxy
	SearchEndpoint string

	// Auth; empty disables the check
	AccessKey string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	dataDir := envOr("API_DATA_DIR", "data")
	cfg := &Config{
		ListenAddr:     envOr("LISTEN_ADDR", ":8080"),
		MetricsAddr:    envOr("METRICS_ADDR", ":9090"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "json"),
		PublicURL:      envOr("API_PUBLIC_URL", "https://api.debtcodersdoja.com"),
		Version:        envOr("API_VERSION", "0.1.0"),
		DataDir:        dataDir,
		UploadDir:      envOr("API_UPLOAD_DIR", "uploads"),
		MOTDPath:       envOr("API_MOTD_PATH", filepath.Join(dataDir, "MOTD.md")),
		MaxTextBytes:   envInt64("API_TEXT_LIMIT_BYTES", 512*1024),
		SearchEndpoint: envOr("SEARCH_ENDPOINT", "https://api.duckduckgo.com/"),
		AccessKey:      envOr("API_ACCESS_KEY", ""),
	}

	if cfg.MaxTextBytes <= 0 {
		return nil, fmt.Errorf("API_TEXT_LIMIT_BYTES must be positive, got %d", cfg.MaxTextBytes)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
