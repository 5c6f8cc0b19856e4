package models

import "time"

// Config holds every policy constant the workflow depends on. All values
// are configurable rather than hard-coded; defaults are applied by the
// configuration manager when the config file is absent.
type Config struct {
	Session    SessionConfig    `yaml:"session" mapstructure:"session"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Workflow   WorkflowConfig   `yaml:"workflow" mapstructure:"workflow"`
	Completion CompletionConfig `yaml:"completion" mapstructure:"completion"`
	Standards  StandardsConfig  `yaml:"standards" mapstructure:"standards"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Alerts     AlertsConfig     `yaml:"alerts" mapstructure:"alerts"`
}

// SessionConfig bounds the per-session conversational context.
type SessionConfig struct {
	// CompactThreshold is the running size (in runes of retained text)
	// above which older turns are compacted into a summary.
	CompactThreshold int `yaml:"compact_threshold" mapstructure:"compact_threshold"`
	// RetainTurns is how many of the newest turns survive compaction
	// verbatim.
	RetainTurns int `yaml:"retain_turns" mapstructure:"retain_turns"`
}

// CacheConfig bounds the lookup cache.
type CacheConfig struct {
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// WorkflowConfig carries the per-stage timeout budgets.
type WorkflowConfig struct {
	FetchTimeout    time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	GenerateTimeout time.Duration `yaml:"generate_timeout" mapstructure:"generate_timeout"`
	ReviewTimeout   time.Duration `yaml:"review_timeout" mapstructure:"review_timeout"`
}

// CompletionConfig describes the external text-completion service.
type CompletionConfig struct {
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKeyEnv   string  `yaml:"api_key_env" mapstructure:"api_key_env"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// StandardsConfig locates the local curriculum documents.
type StandardsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExportConfig controls where finished plans are written.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// AlertsConfig overrides the built-in alert thresholds and, when a webhook
// URL is set, enables Slack notifications. Zero values keep the defaults.
type AlertsConfig struct {
	MinAverageQuality float64 `yaml:"min_average_quality" mapstructure:"min_average_quality"`
	MaxFailureRatePct int     `yaml:"max_failure_rate_pct" mapstructure:"max_failure_rate_pct"`
	MissingStreak     int     `yaml:"missing_streak" mapstructure:"missing_streak"`
	WindowHours       int     `yaml:"window_hours" mapstructure:"window_hours"`
	SlackWebhookURL   string  `yaml:"slack_webhook_url" mapstructure:"slack_webhook_url"`
}
