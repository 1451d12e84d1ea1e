// Package config provides configuration for the playground service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the playground configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Upstream gateway settings
	UpstreamURL    string
	UpstreamAPIKey string
	UpstreamUserID string
	Mode           string

	// Timeouts
	LLMTimeout    time.Duration
	StreamTimeout time.Duration

	// Request policy module; empty uses the built-in policy
	PolicyFile string

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:    getEnv("DATABASE_URL", "file:playground.db?cache=shared&mode=rwc"),
		UpstreamURL:    getEnv("UPSTREAM_URL", "http://localhost:3000"),
		UpstreamAPIKey: getEnv("UPSTREAM_API_KEY", ""),
		UpstreamUserID: getEnv("UPSTREAM_USER_ID", ""),
		Mode:           getEnv("PLAYGROUND_MODE", ""),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		StreamTimeout:  time.Duration(getEnvInt("STREAM_TIMEOUT_MS", 300000)) * time.Millisecond,
		PolicyFile:     getEnv("POLICY_FILE", ""),
		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
