package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 5840, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Generation.TextModel)
	assert.Equal(t, "gemini-3-pro-image-preview", cfg.Generation.ImageModel)
	assert.Equal(t, "60s", cfg.Generation.Timeout)
	assert.Equal(t, 3, cfg.Generation.Retry.MaxAttempts)
	assert.Equal(t, "1h", cfg.Scheduler.Interval)
	assert.Equal(t, "Asia/Tokyo", cfg.Scheduler.Timezone)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.Scheduler.Timezone = "UTC"
	ApplyDefaults(cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "UTC", cfg.Scheduler.Timezone)
}

func TestGenerationClientConfig(t *testing.T) {
	gen := GenerationConfig{
		APIKey:     "k",
		TextModel:  "text",
		ImageModel: "image",
		Timeout:    "30s",
		Retry: RetryConfig{
			MaxAttempts:  5,
			InitialDelay: "500ms",
			MaxDelay:     "8s",
		},
	}

	clientCfg, err := gen.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, clientCfg.Timeout)
	assert.Equal(t, 5, clientCfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, clientCfg.Retry.InitialDelay)
	assert.Equal(t, 8*time.Second, clientCfg.Retry.MaxDelay)
}

func TestGenerationClientConfigRejectsBadDuration(t *testing.T) {
	gen := GenerationConfig{Timeout: "soon", Retry: RetryConfig{InitialDelay: "1s", MaxDelay: "10s"}}
	_, err := gen.ClientConfig()
	require.Error(t, err)
}
