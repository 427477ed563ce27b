// Package config provides configuration loading and validation for the CLI
// and server. Values come from a JSON file, overlaid by environment
// variables; CLI flags win over both.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config is the application configuration. All fields are optional in the
// file; required values are enforced per command after merging.
type Config struct {
	// Credentials and endpoints
	APIKey       string `json:"api_key,omitempty"`       // Gemini API key
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL
	AnalyticsURL string `json:"analytics_url,omitempty"` // analytics proxy base URL
	RedisURL     string `json:"redis_url,omitempty"`     // optional day-cache backend

	// Seedream image backend; without a key only gemini image models work
	SeedreamAPIKey string `json:"seedream_api_key,omitempty"`
	SeedreamAPIURL string `json:"seedream_api_url,omitempty"`

	// CMS (publish target)
	CMSBaseURL string `json:"cms_base_url,omitempty"`
	CMSAPIKey  string `json:"cms_api_key,omitempty"`
	CMSTable   string `json:"cms_table,omitempty"`
	CMSBucket  string `json:"cms_bucket,omitempty"`

	// Run behavior
	Articles            int    `json:"articles,omitempty" validate:"omitempty,min=1,max=10"`
	ImageModel          string `json:"image_model,omitempty" validate:"omitempty,oneof=seedream-4.5 gemini-3-pro-image-preview gemini-2.5-flash-image"`
	AutoPublish         bool   `json:"auto_publish,omitempty"`
	SkipImages          bool   `json:"skip_images,omitempty"`
	AppContext          string `json:"app_context,omitempty"`
	StageTimeoutSeconds int    `json:"stage_timeout_seconds,omitempty" validate:"omitempty,min=0,max=3600"`

	// PromptOverrides replaces embedded prompt templates per role key.
	PromptOverrides map[string]string `json:"prompt_overrides,omitempty"`

	// Server
	Port int `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. godotenv has already
// loaded .env by the time this runs.
func FromEnv() Config {
	cfg := Config{
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AnalyticsURL:   os.Getenv("ANALYTICS_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SeedreamAPIKey: os.Getenv("SEEDREAM_API_KEY"),
		SeedreamAPIURL: os.Getenv("SEEDREAM_API_URL"),
		CMSBaseURL:     os.Getenv("CMS_BASE_URL"),
		CMSAPIKey:      os.Getenv("CMS_API_KEY"),
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = port
	}
	return cfg
}

// Validate checks value ranges. Required fields are not checked here; each
// command enforces what it actually needs after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Booleans cannot distinguish unset from false, so they are taken
// from c as-is; CLI flags always win for booleans.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AnalyticsURL == "" {
		result.AnalyticsURL = defaults.AnalyticsURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.SeedreamAPIKey == "" {
		result.SeedreamAPIKey = defaults.SeedreamAPIKey
	}
	if result.SeedreamAPIURL == "" {
		result.SeedreamAPIURL = defaults.SeedreamAPIURL
	}
	if result.CMSBaseURL == "" {
		result.CMSBaseURL = defaults.CMSBaseURL
	}
	if result.CMSAPIKey == "" {
		result.CMSAPIKey = defaults.CMSAPIKey
	}
	if result.CMSTable == "" {
		result.CMSTable = defaults.CMSTable
	}
	if result.CMSBucket == "" {
		result.CMSBucket = defaults.CMSBucket
	}
	if result.AppContext == "" {
		result.AppContext = defaults.AppContext
	}
	if result.ImageModel == "" {
		result.ImageModel = defaults.ImageModel
	}
	if result.Articles == 0 {
		result.Articles = defaults.Articles
	}
	if result.StageTimeoutSeconds == 0 {
		result.StageTimeoutSeconds = defaults.StageTimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.PromptOverrides == nil {
		result.PromptOverrides = defaults.PromptOverrides
	}

	return result
}
