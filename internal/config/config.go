// Copyright 2025 Aura Wellness Engine Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Usage    UsageConfig    `mapstructure:"usage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
}

// OpenAIConfig contains generative backend configuration
type OpenAIConfig struct {
	APIKey   string `mapstructure:"apikey"`
	Endpoint string `mapstructure:"endpoint"`
}

// YouTubeConfig contains media search API configuration
type YouTubeConfig struct {
	APIKey        string `mapstructure:"apikey"`
	Endpoint      string `mapstructure:"endpoint"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

// PipelineConfig contains generation and retry settings shared by features
type PipelineConfig struct {
	Model          string   `mapstructure:"model"`
	VisionModel    string   `mapstructure:"vision_model"`
	MaxTokens      int      `mapstructure:"max_tokens"`
	Temperature    float64  `mapstructure:"temperature"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxAttempts    int      `mapstructure:"max_attempts"`
	RefusalPhrases []string `mapstructure:"refusal_phrases"`
}

// UsageConfig contains usage counter storage and quota settings
type UsageConfig struct {
	StorageType string         `mapstructure:"storage_type"`
	DBPath      string         `mapstructure:"db_path"`
	Timezone    string         `mapstructure:"timezone"`
	DailyLimits map[string]int `mapstructure:"daily_limits"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig contains the HTTP service configuration
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// Load loads configuration from file and environment variables. Environment
// variables take precedence over config file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := setConfigFile(v, configPath); err != nil {
		return nil, fmt.Errorf("failed to set config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("AURA")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error if env vars are set
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1")

	v.SetDefault("youtube.endpoint", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.max_concurrent", 4)

	v.SetDefault("pipeline.model", "gpt-4o")
	v.SetDefault("pipeline.vision_model", "gpt-4o")
	v.SetDefault("pipeline.max_tokens", 1500)
	v.SetDefault("pipeline.temperature", 0.7)
	v.SetDefault("pipeline.timeout_seconds", 30)
	v.SetDefault("pipeline.max_attempts", 2)
	v.SetDefault("pipeline.refusal_phrases", []string{})

	v.SetDefault("usage.storage_type", "sqlite")
	v.SetDefault("usage.db_path", "./usage.db")
	v.SetDefault("usage.timezone", "UTC")
	v.SetDefault("usage.daily_limits", map[string]int{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("server.port", 8080)
}

// setConfigFile sets the configuration file path with fallback logic
func setConfigFile(v *viper.Viper, configPath string) error {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return fmt.Errorf("config file specified by CONFIG_PATH does not exist: %s", envPath)
		}
		v.SetConfigFile(envPath)
		return nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	return nil
}

// setEnvironmentMappings sets explicit environment variable mappings
func setEnvironmentMappings(v *viper.Viper) {
	envMappings := map[string]string{
		"OPENAI_API_KEY":  "openai.apikey",
		"OPENAI_ENDPOINT": "openai.endpoint",
		"YOUTUBE_API_KEY": "youtube.apikey",
		"USAGE_DB_PATH":   "usage.db_path",
		"LOG_LEVEL":       "logging.level",
		"LOG_FORMAT":      "logging.format",
		"LOG_OUTPUT":      "logging.output",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the configuration for required fields and valid
// values, reporting every problem at once
func validateConfig(config *Config) error {
	var errors []ValidationError

	if config.OpenAI.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "openai.apikey",
			Message: "OpenAI API key is required. Set via config file or OPENAI_API_KEY environment variable",
		})
	}

	if config.Pipeline.MaxTokens <= 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.max_tokens",
			Message: "max_tokens must be greater than 0",
		})
	}

	if config.Pipeline.Temperature < 0 || config.Pipeline.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if config.Pipeline.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.timeout_seconds",
			Message: "timeout_seconds must be greater than 0",
		})
	}

	if config.Pipeline.MaxAttempts <= 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.max_attempts",
			Message: "max_attempts must be greater than 0",
		})
	}

	if config.YouTube.MaxConcurrent <= 0 {
		errors = append(errors, ValidationError{
			Field:   "youtube.max_concurrent",
			Message: "max_concurrent must be greater than 0",
		})
	}

	validStorageTypes := []string{"memory", "sqlite"}
	if !contains(validStorageTypes, config.Usage.StorageType) {
		errors = append(errors, ValidationError{
			Field:   "usage.storage_type",
			Message: fmt.Sprintf("storage type must be one of: %s", strings.Join(validStorageTypes, ", ")),
		})
	}

	if config.Usage.StorageType == "sqlite" && config.Usage.DBPath == "" {
		errors = append(errors, ValidationError{
			Field:   "usage.db_path",
			Message: "usage database path is required for sqlite storage",
		})
	}

	if _, err := time.LoadLocation(config.Usage.Timezone); err != nil {
		errors = append(errors, ValidationError{
			Field:   "usage.timezone",
			Message: fmt.Sprintf("unknown timezone %q", config.Usage.Timezone),
		})
	}

	for feature, limit := range config.Usage.DailyLimits {
		if limit < 0 {
			errors = append(errors, ValidationError{
				Field:   "usage.daily_limits." + feature,
				Message: "daily limit must be greater than or equal to 0",
			})
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if len(errors) > 0 {
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}

// Location returns the parsed usage timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Usage.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MaskSensitiveValues returns a copy of the config with sensitive values
// masked for logging
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c
	if masked.OpenAI.APIKey != "" {
		masked.OpenAI.APIKey = maskValue(masked.OpenAI.APIKey)
	}
	if masked.YouTube.APIKey != "" {
		masked.YouTube.APIKey = maskValue(masked.YouTube.APIKey)
	}
	return &masked
}

// maskValue masks sensitive values, showing only the first 8 characters
func maskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

// contains checks if a slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// WatchConfig enables configuration hot-reloading for development
func WatchConfig(configPath string, callback func(*Config)) error {
	v := viper.New()

	if err := setConfigFile(v, configPath); err != nil {
		return err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		config, err := Load(configPath)
		if err != nil {
			fmt.Printf("Failed to reload config after change to %s: %v\n", e.Name, err)
			return
		}
		callback(config)
	})

	return nil
}
