// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	DBURL               string        `mapstructure:"DB_URL"`
	GithubToken         string        `mapstructure:"GITHUB_TOKEN"`
	HTTPAddr            string        `mapstructure:"HTTP_ADDR"`
	PollInterval        time.Duration `mapstructure:"POLL_INTERVAL"`
	AccountConcurrency  int           `mapstructure:"ACCOUNT_CONCURRENCY"`
	DegradedAfterCycles int           `mapstructure:"DEGRADED_AFTER_CYCLES"`
	WebhookURL          string        `mapstructure:"WEBHOOK_URL"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("POLL_INTERVAL", "2m")
	viper.SetDefault("ACCOUNT_CONCURRENCY", 5)
	viper.SetDefault("DEGRADED_AFTER_CYCLES", 5)

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.GithubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("POLL_INTERVAL must be a positive duration")
	}
	if cfg.AccountConcurrency <= 0 {
		return nil, errors.New("ACCOUNT_CONCURRENCY must be a positive integer")
	}

	return &cfg, nil
}
