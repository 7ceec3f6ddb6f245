package config

import "time"

// Environment names accepted by ServerConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development production test"`
}

// IsProduction reports whether internal error detail must be withheld from clients.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// DatabaseConfig contains Postgres connection settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// RedisConfig contains session store settings. An empty Addr selects the
// in-process session store, which is only suitable for a single instance.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// AuthConfig contains token, session and password hashing settings.
type AuthConfig struct {
	AccessTokenSecret           string `mapstructure:"access_token_secret" validate:"required,min=32"`
	RefreshTokenSecret          string `mapstructure:"refresh_token_secret" validate:"required,min=32,nefield=AccessTokenSecret"`
	AccessTokenLifetimeSeconds  int    `mapstructure:"access_token_lifetime_seconds" validate:"required,gt=0"`
	RefreshTokenLifetimeSeconds int    `mapstructure:"refresh_token_lifetime_seconds" validate:"required,gt=0"`
	SessionTTLSeconds           int    `mapstructure:"session_ttl_seconds" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// AccessTokenLifetime returns the access token expiry as a duration.
func (c AuthConfig) AccessTokenLifetime() time.Duration {
	return time.Duration(c.AccessTokenLifetimeSeconds) * time.Second
}

// RefreshTokenLifetime returns the refresh token expiry as a duration.
func (c AuthConfig) RefreshTokenLifetime() time.Duration {
	return time.Duration(c.RefreshTokenLifetimeSeconds) * time.Second
}

// SessionTTL returns how long a session record lives after each write.
func (c AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// RateLimitConfig controls the per-IP request limiter.
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests" validate:"required_if=Enabled true,gte=0"`
	WindowMinutes int  `mapstructure:"window_minutes" validate:"required_if=Enabled true,gte=0"`
}

// Window returns the limiter window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}
