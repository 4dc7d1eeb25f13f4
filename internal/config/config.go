package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the SQL backend. SQLite URLs are file paths or
// "file:" DSNs; PostgreSQL URLs are postgres:// connection strings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains the enrichment model settings. An empty API key
// disables enrichment.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name" validate:"required"`
	MaxRetries         int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
}

// Enabled reports whether an API key is configured.
func (c LLMConfig) Enabled() bool {
	return c.GeminiAPIKey != ""
}

// SessionConfig holds the study-session defaults. Seed 0 seeds the session
// random source from the clock.
type SessionConfig struct {
	DailyNewTarget    int   `mapstructure:"daily_new_target" validate:"gte=0"`
	DailyReviewTarget int   `mapstructure:"daily_review_target" validate:"gte=0"`
	Backfill          bool  `mapstructure:"backfill"`
	Seed              int64 `mapstructure:"seed"`
}

// TaskConfig configures the background worker pool.
type TaskConfig struct {
	WorkerCount        int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize          int `mapstructure:"queue_size" validate:"gt=0"`
	PersistMaxAttempts int `mapstructure:"persist_max_attempts" validate:"gt=0"`
	PersistBaseDelayMS int `mapstructure:"persist_base_delay_ms" validate:"gt=0"`
}

// SweepConfig configures the periodic enrichment sweep.
type SweepConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes" validate:"gte=1"`
	BatchSize       int  `mapstructure:"batch_size" validate:"gte=1"`
}
