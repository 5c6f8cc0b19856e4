// Package config loads and validates the Pedagogue configuration file.
// Every policy constant the workflow depends on (compaction threshold,
// cache capacity and TTL, stage timeouts) is read from here rather than
// hard-coded.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
	"github.com/spf13/viper"
)

// ConfigurationManager defines the interface for loading and validating
// configuration from the .pedagogue.yaml file.
type ConfigurationManager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	// basePath is the directory where .pedagogue.yaml resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads the
// configuration file relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// Default returns a Config populated with sensible defaults.
func Default() *models.Config {
	return &models.Config{
		Session: models.SessionConfig{
			CompactThreshold: 4000,
			RetainTurns:      5,
		},
		Cache: models.CacheConfig{
			Capacity: 128,
			TTL:      24 * time.Hour,
		},
		Workflow: models.WorkflowConfig{
			FetchTimeout:    30 * time.Second,
			GenerateTimeout: 90 * time.Second,
			ReviewTimeout:   60 * time.Second,
		},
		Completion: models.CompletionConfig{
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta",
			Model:       "gemini-2.0-flash-exp",
			APIKeyEnv:   "PEDAGOGUE_API_KEY",
			Temperature: 0.7,
		},
		Standards: models.StandardsConfig{Dir: "standards"},
		Export:    models.ExportConfig{Dir: "exports"},
	}
}

// Load reads .pedagogue.yaml from the base path using Viper. If the file
// does not exist, defaults are returned.
func (cm *viperConfigManager) Load() (*models.Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName(".pedagogue")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("session.compact_threshold", cfg.Session.CompactThreshold)
	v.SetDefault("session.retain_turns", cfg.Session.RetainTurns)
	v.SetDefault("cache.capacity", cfg.Cache.Capacity)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("workflow.fetch_timeout", cfg.Workflow.FetchTimeout)
	v.SetDefault("workflow.generate_timeout", cfg.Workflow.GenerateTimeout)
	v.SetDefault("workflow.review_timeout", cfg.Workflow.ReviewTimeout)
	v.SetDefault("completion.endpoint", cfg.Completion.Endpoint)
	v.SetDefault("completion.model", cfg.Completion.Model)
	v.SetDefault("completion.api_key_env", cfg.Completion.APIKeyEnv)
	v.SetDefault("completion.temperature", cfg.Completion.Temperature)
	v.SetDefault("standards.dir", cfg.Standards.Dir)
	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("alerts.min_average_quality", cfg.Alerts.MinAverageQuality)
	v.SetDefault("alerts.max_failure_rate_pct", cfg.Alerts.MaxFailureRatePct)
	v.SetDefault("alerts.missing_streak", cfg.Alerts.MissingStreak)
	v.SetDefault("alerts.window_hours", cfg.Alerts.WindowHours)
	v.SetDefault("alerts.slack_webhook_url", cfg.Alerts.SlackWebhookURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found — return defaults.
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .pedagogue.yaml: %w", err)
	}

	cfg.Session.CompactThreshold = v.GetInt("session.compact_threshold")
	cfg.Session.RetainTurns = v.GetInt("session.retain_turns")
	cfg.Cache.Capacity = v.GetInt("cache.capacity")
	cfg.Cache.TTL = v.GetDuration("cache.ttl")
	cfg.Workflow.FetchTimeout = v.GetDuration("workflow.fetch_timeout")
	cfg.Workflow.GenerateTimeout = v.GetDuration("workflow.generate_timeout")
	cfg.Workflow.ReviewTimeout = v.GetDuration("workflow.review_timeout")
	cfg.Completion.Endpoint = v.GetString("completion.endpoint")
	cfg.Completion.Model = v.GetString("completion.model")
	cfg.Completion.APIKeyEnv = v.GetString("completion.api_key_env")
	cfg.Completion.Temperature = v.GetFloat64("completion.temperature")
	cfg.Standards.Dir = v.GetString("standards.dir")
	cfg.Export.Dir = v.GetString("export.dir")
	cfg.Alerts.MinAverageQuality = v.GetFloat64("alerts.min_average_quality")
	cfg.Alerts.MaxFailureRatePct = v.GetInt("alerts.max_failure_rate_pct")
	cfg.Alerts.MissingStreak = v.GetInt("alerts.missing_streak")
	cfg.Alerts.WindowHours = v.GetInt("alerts.window_hours")
	cfg.Alerts.SlackWebhookURL = v.GetString("alerts.slack_webhook_url")

	return cfg, nil
}

// Validate checks the configuration for invalid values and returns a clear
// error message identifying every problem found.
func (cm *viperConfigManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.Session.CompactThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("session.compact_threshold must be positive, got %d", cfg.Session.CompactThreshold))
	}
	if cfg.Session.RetainTurns <= 0 {
		errs = append(errs, fmt.Sprintf("session.retain_turns must be positive, got %d", cfg.Session.RetainTurns))
	}
	if cfg.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Sprintf("cache.capacity must be positive, got %d", cfg.Cache.Capacity))
	}
	if cfg.Cache.TTL <= 0 {
		errs = append(errs, fmt.Sprintf("cache.ttl must be positive, got %s", cfg.Cache.TTL))
	}
	if cfg.Workflow.FetchTimeout <= 0 {
		errs = append(errs, "workflow.fetch_timeout must be positive")
	}
	if cfg.Workflow.GenerateTimeout <= 0 {
		errs = append(errs, "workflow.generate_timeout must be positive")
	}
	if cfg.Workflow.ReviewTimeout <= 0 {
		errs = append(errs, "workflow.review_timeout must be positive")
	}
	if cfg.Completion.Model == "" {
		errs = append(errs, "completion.model must not be empty")
	}
	if cfg.Completion.Endpoint == "" {
		errs = append(errs, "completion.endpoint must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
