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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
openai:
  apikey: "sk-test-key"  # pragma: allowlist secret
  endpoint: "https://api.openai.com/v1"
youtube:
  apikey: "yt-test-key"  # pragma: allowlist secret
  max_concurrent: 3
pipeline:
  model: "gpt-4o"
  vision_model: "gpt-4o"
  max_tokens: 1200
  temperature: 0.6
  timeout_seconds: 20
  max_attempts: 2
usage:
  storage_type: "sqlite"
  db_path: "./test_usage.db"
  timezone: "America/New_York"
  daily_limits:
    palm_analysis: 1
    kundli_analysis: 2
logging:
  level: "debug"
  format: "json"
  output: "stdout"
server:
  port: 9090
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.OpenAI.APIKey != "sk-test-key" {
		t.Errorf("Expected OpenAI API key 'sk-test-key', got '%s'", config.OpenAI.APIKey)
	}

	if config.YouTube.MaxConcurrent != 3 {
		t.Errorf("Expected youtube max_concurrent 3, got %d", config.YouTube.MaxConcurrent)
	}

	if config.Pipeline.MaxTokens != 1200 {
		t.Errorf("Expected pipeline max_tokens 1200, got %d", config.Pipeline.MaxTokens)
	}

	if config.Usage.Timezone != "America/New_York" {
		t.Errorf("Expected usage timezone 'America/New_York', got '%s'", config.Usage.Timezone)
	}

	if config.Usage.DailyLimits["palm_analysis"] != 1 {
		t.Errorf("Expected palm_analysis daily limit 1, got %d", config.Usage.DailyLimits["palm_analysis"])
	}

	if config.Server.Port != 9090 {
		t.Errorf("Expected server port 9090, got %d", config.Server.Port)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Minimal config relying on defaults for everything else
	configContent := `
openai:
  apikey: "sk-test-key"  # pragma: allowlist secret
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Pipeline.Model != "gpt-4o" {
		t.Errorf("Expected default model 'gpt-4o', got '%s'", config.Pipeline.Model)
	}

	if config.Pipeline.TimeoutSeconds != 30 {
		t.Errorf("Expected default timeout_seconds 30, got %d", config.Pipeline.TimeoutSeconds)
	}

	if config.Usage.StorageType != "sqlite" {
		t.Errorf("Expected default storage_type 'sqlite', got '%s'", config.Usage.StorageType)
	}

	if config.Usage.Timezone != "UTC" {
		t.Errorf("Expected default timezone 'UTC', got '%s'", config.Usage.Timezone)
	}

	if config.Server.Port != 8080 {
		t.Errorf("Expected default server port 8080, got %d", config.Server.Port)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
openai:
  apikey: ""
pipeline:
  max_tokens: -1
  temperature: 3.5
usage:
  storage_type: "redis"
  timezone: "Not/AZone"
logging:
  level: "verbose"
server:
  port: 70000
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	errMsg := err.Error()
	expectedErrors := []string{
		"openai.apikey",
		"pipeline.max_tokens",
		"pipeline.temperature",
		"usage.storage_type",
		"usage.timezone",
		"logging.level",
		"server.port",
	}

	for _, expected := range expectedErrors {
		if !strings.Contains(errMsg, expected) {
			t.Errorf("Expected error message to contain '%s', got: %s", expected, errMsg)
		}
	}
}

func TestEnvironmentVariableOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
openai:
  apikey: "file-key"  # pragma: allowlist secret
logging:
  level: "info"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.OpenAI.APIKey != "env-key" {
		t.Errorf("Expected env var to override API key, got '%s'", config.OpenAI.APIKey)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected env var to override log level, got '%s'", config.Logging.Level)
	}
}

func TestMaskSensitiveValues(t *testing.T) {
	config := &Config{
		OpenAI:  OpenAIConfig{APIKey: "sk-1234567890abcdef"},
		YouTube: YouTubeConfig{APIKey: "short"},
	}

	masked := config.MaskSensitiveValues()

	if masked.OpenAI.APIKey != "sk-12345***********" {
		t.Errorf("Expected masked OpenAI key 'sk-12345***********', got '%s'", masked.OpenAI.APIKey)
	}

	if masked.YouTube.APIKey != "*****" {
		t.Errorf("Expected fully masked short key, got '%s'", masked.YouTube.APIKey)
	}

	// Original must remain untouched
	if config.OpenAI.APIKey != "sk-1234567890abcdef" {
		t.Error("MaskSensitiveValues modified the original config")
	}
}

func TestLocation(t *testing.T) {
	config := &Config{Usage: UsageConfig{Timezone: "Asia/Kolkata"}}
	loc := config.Location()
	if loc.String() != "Asia/Kolkata" {
		t.Errorf("Expected location 'Asia/Kolkata', got '%s'", loc.String())
	}

	config.Usage.Timezone = "bogus"
	if config.Location().String() != "UTC" {
		t.Error("Expected UTC fallback for unknown timezone")
	}
}
