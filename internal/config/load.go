package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// so server.port is read from TASKER_SERVER_PORT.
const EnvPrefix = "TASKER"

// defaults lists every key Load knows about. Each key is bound to the
// environment variable named by envVarName, so keys without a sensible default
// carry a zero value.
var defaults = map[string]any{
	"server.port":        3000,
	"server.log_level":   "info",
	"server.environment": EnvDevelopment,

	"database.url":            "",
	"database.max_open_conns": 25,
	"database.max_idle_conns": 5,
	"database.auto_migrate":   true,

	"redis.addr":     "",
	"redis.username": "",
	"redis.password": "",
	"redis.db":       0,

	"auth.access_token_secret":            "",
	"auth.refresh_token_secret":           "",
	"auth.access_token_lifetime_seconds":  1800,
	"auth.refresh_token_lifetime_seconds": 604800,
	"auth.session_ttl_seconds":            604800,
	"auth.bcrypt_cost":                    10,

	"rate_limit.enabled":        true,
	"rate_limit.requests":       100,
	"rate_limit.window_minutes": 15,
}

// Load reads configuration from, in increasing order of precedence:
// built-in defaults, ./config.yaml, a .env file, and TASKER_* environment
// variables. The result is validated before it is returned.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v, err := newViper()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key := range defaults {
		if err := v.BindEnv(key, envVarName(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return v, nil
}

// envVarName maps a key such as rate_limit.window_minutes to
// TASKER_RATE_LIMIT_WINDOW_MINUTES.
func envVarName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
