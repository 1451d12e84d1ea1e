package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("STREAM_TIMEOUT_MS", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3000", cfg.UpstreamURL)
	assert.Equal(t, 5*time.Minute, cfg.StreamTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("UPSTREAM_URL", "http://gateway:3000")
	t.Setenv("PLAYGROUND_MODE", "MOCK")
	t.Setenv("LLM_TIMEOUT_MS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "http://gateway:3000", cfg.UpstreamURL)
	assert.Equal(t, "MOCK", cfg.Mode)
	assert.Equal(t, 2*time.Minute, cfg.LLMTimeout, "invalid ints fall back to the default")
}
