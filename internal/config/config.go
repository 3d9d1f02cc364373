package config

import (
	"fmt"
	"time"

	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/yufyaj/seo-writer/internal/generation"
	"github.com/yufyaj/seo-writer/pkg/logger"
	"github.com/yufyaj/seo-writer/pkg/retry"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logger     logger.Config    `yaml:"logger"`
	Generation GenerationConfig `yaml:"generation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Crypto     CryptoConfig     `yaml:"crypto"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type GenerationConfig struct {
	APIKey     string      `yaml:"api_key"`
	TextModel  string      `yaml:"text_model"`
	ImageModel string      `yaml:"image_model"`
	Timeout    string      `yaml:"timeout"`
	Retry      RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int    `yaml:"max_attempts"`
	InitialDelay string `yaml:"initial_delay"`
	MaxDelay     string `yaml:"max_delay"`
}

type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
	// Timezone is the fixed reference zone for trigger matching. Schedule
	// hours always mean this zone, never the server-local one.
	Timezone string `yaml:"timezone"`
}

type CryptoConfig struct {
	// EncryptionKey is the 32-byte AES key (base64) used to decrypt stored
	// CMS application passwords.
	EncryptionKey string `yaml:"encryption_key"`
}

// ClientConfig converts the YAML duration strings into the generation
// client's configuration.
func (g GenerationConfig) ClientConfig() (generation.Config, error) {
	timeout, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return generation.Config{}, fmt.Errorf("invalid generation timeout: %w", err)
	}
	initialDelay, err := time.ParseDuration(g.Retry.InitialDelay)
	if err != nil {
		return generation.Config{}, fmt.Errorf("invalid retry initial delay: %w", err)
	}
	maxDelay, err := time.ParseDuration(g.Retry.MaxDelay)
	if err != nil {
		return generation.Config{}, fmt.Errorf("invalid retry max delay: %w", err)
	}

	return generation.Config{
		APIKey:     g.APIKey,
		TextModel:  g.TextModel,
		ImageModel: g.ImageModel,
		Timeout:    timeout,
		Retry: retry.Config{
			MaxAttempts:  g.Retry.MaxAttempts,
			InitialDelay: initialDelay,
			MaxDelay:     maxDelay,
		},
	}, nil
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	return cfg, nil
}

// ApplyDefaults fills zero-valued fields with production defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5840
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Generation.TextModel == "" {
		cfg.Generation.TextModel = "gemini-3-pro-preview"
	}
	if cfg.Generation.ImageModel == "" {
		cfg.Generation.ImageModel = "gemini-3-pro-image-preview"
	}
	if cfg.Generation.Timeout == "" {
		cfg.Generation.Timeout = "60s"
	}
	if cfg.Generation.Retry.MaxAttempts == 0 {
		cfg.Generation.Retry.MaxAttempts = 3
	}
	if cfg.Generation.Retry.InitialDelay == "" {
		cfg.Generation.Retry.InitialDelay = "1s"
	}
	if cfg.Generation.Retry.MaxDelay == "" {
		cfg.Generation.Retry.MaxDelay = "10s"
	}
	if cfg.Scheduler.Interval == "" {
		cfg.Scheduler.Interval = "1h"
	}
	if cfg.Scheduler.Timezone == "" {
		cfg.Scheduler.Timezone = "Asia/Tokyo"
	}
}
