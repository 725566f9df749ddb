// Package config loads and validates the application configuration from a
// YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Gamma        GammaConfig        `mapstructure:"gamma"`
	Jupiter      JupiterConfig      `mapstructure:"jupiter"`
	DataAPI      DataAPIConfig      `mapstructure:"data_api"`
	Assistant    AssistantConfig    `mapstructure:"assistant"`
	Search       SearchConfig       `mapstructure:"search"`
	SavedQueries SavedQueriesConfig `mapstructure:"saved_queries"`
	Tags         TagsConfig         `mapstructure:"tags"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds the HTTP API listener configuration
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GammaConfig holds the market-style upstream API configuration
type GammaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// JupiterConfig holds the aggregator-style upstream API configuration
type JupiterConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Enabled bool          `mapstructure:"enabled"`
}

// DataAPIConfig holds the leaderboard upstream configuration
type DataAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AssistantConfig holds the optional LLM collaborator configuration.
// The API key comes from the environment, never from the config file.
type AssistantConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	Enabled bool          `mapstructure:"enabled"`
}

// SearchConfig holds result-page sizing
type SearchConfig struct {
	ItemsPerPage int `mapstructure:"items_per_page"`
}

// SavedQueriesConfig holds local persistence configuration
type SavedQueriesConfig struct {
	FilePath string `mapstructure:"file_path"`
}

// TagsConfig holds tag-discovery probe configuration
type TagsConfig struct {
	MaxID      int           `mapstructure:"max_id"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchPause time.Duration `mapstructure:"batch_pause"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("PULSEPOLY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("gamma.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma.timeout", "30s")

	v.SetDefault("jupiter.base_url", "https://prediction-market-api.jup.ag/api/v1")
	v.SetDefault("jupiter.timeout", "30s")
	v.SetDefault("jupiter.enabled", true)

	v.SetDefault("data_api.base_url", "https://data-api.polymarket.com")
	v.SetDefault("data_api.timeout", "30s")

	v.SetDefault("assistant.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("assistant.model", "openai/gpt-4o-mini")
	v.SetDefault("assistant.timeout", "20s")
	v.SetDefault("assistant.enabled", true)

	v.SetDefault("search.items_per_page", 50)

	v.SetDefault("saved_queries.file_path", "./data/saved-queries.json")

	v.SetDefault("tags.max_id", 1000)
	v.SetDefault("tags.batch_size", 10)
	v.SetDefault("tags.batch_pause", "100ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}

	if c.Gamma.BaseURL == "" {
		return fmt.Errorf("gamma.base_url is required")
	}
	if c.Gamma.Timeout < time.Second {
		return fmt.Errorf("gamma.timeout must be at least 1 second")
	}

	if c.Jupiter.Enabled && c.Jupiter.BaseURL == "" {
		return fmt.Errorf("jupiter.base_url is required when jupiter is enabled")
	}

	if c.DataAPI.BaseURL == "" {
		return fmt.Errorf("data_api.base_url is required")
	}

	if c.Assistant.Enabled {
		if c.Assistant.BaseURL == "" {
			return fmt.Errorf("assistant.base_url is required when assistant is enabled")
		}
		if c.Assistant.Model == "" {
			return fmt.Errorf("assistant.model is required when assistant is enabled")
		}
	}

	if c.Search.ItemsPerPage < 1 || c.Search.ItemsPerPage > 500 {
		return fmt.Errorf("search.items_per_page must be between 1 and 500")
	}

	if c.SavedQueries.FilePath == "" {
		return fmt.Errorf("saved_queries.file_path is required")
	}

	if c.Tags.MaxID < 1 {
		return fmt.Errorf("tags.max_id must be at least 1")
	}
	if c.Tags.BatchSize < 1 {
		return fmt.Errorf("tags.batch_size must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
