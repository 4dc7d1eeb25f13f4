package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g.
// SCRYWORDS_SERVER_PORT for server.port.
const EnvPrefix = "SCRYWORDS"

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigPaths are searched for config.yaml. Defaults to "." and /etc/scry-words.
	ConfigPaths []string

	// EnvFile is loaded into the process environment when it exists.
	EnvFile string
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions is Load with explicit search locations.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		// A missing .env file is normal outside local development.
		_ = godotenv.Load(opts.EnvFile)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	paths := opts.ConfigPaths
	if len(paths) == 0 {
		paths = []string{".", "/etc/scry-words"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct-tag constraints on cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file:scry-words.db?_foreign_keys=on")

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.prompt_template_path", "")

	v.SetDefault("session.daily_new_target", 10)
	v.SetDefault("session.daily_review_target", 40)
	v.SetDefault("session.backfill", false)
	v.SetDefault("session.seed", 0)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.persist_max_attempts", 5)
	v.SetDefault("task.persist_base_delay_ms", 200)

	v.SetDefault("sweep.enabled", false)
	v.SetDefault("sweep.interval_minutes", 30)
	v.SetDefault("sweep.batch_size", 10)
}

// bindEnvs makes every defaulted key visible to Unmarshal when it is only set
// through the environment.
func bindEnvs(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}
}
