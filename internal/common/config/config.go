// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds settings for the backend the console talks to.
type APIConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	WithCredentials bool   `mapstructure:"with_credentials"`
	Timeout         int    `mapstructure:"timeout"`     // milliseconds
	MaxRetries      int    `mapstructure:"max_retries"` // 0 disables retry
	RetryDelay      int    `mapstructure:"retry_delay"` // milliseconds
	TenantAlias     string `mapstructure:"tenant_alias"`
}

// SessionConfig controls the unauthorized flow.
type SessionConfig struct {
	UnauthorizedDebounce int    `mapstructure:"unauthorized_debounce"` // milliseconds
	LogoutDelay          int    `mapstructure:"logout_delay"`          // milliseconds
	Debouncer            string `mapstructure:"debouncer"`             // memory | redis
	RedisKey             string `mapstructure:"redis_key"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the Prometheus endpoint settings used by serve-metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

// UsesRedis reports whether the shared Redis debouncer is configured.
func (s SessionConfig) UsesRedis() bool {
	return s.Debouncer == DebouncerRedis
}

const (
	DebouncerMemory = "memory"
	DebouncerRedis  = "redis"
)

// String hides the password when a config is logged.
func (r RedisConfig) String() string {
	pw := ""
	if r.Password != "" {
		pw = "****"
	}
	return fmt.Sprintf("redis://:%s@%s/%d", pw, r.Address, r.DB)
}
