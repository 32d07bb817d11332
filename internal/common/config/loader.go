// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults mirror the browser console's request layer.
const (
	DefaultTimeoutMs              = 15000
	DefaultMaxRetries             = 0
	DefaultRetryDelayMs           = 1000
	DefaultUnauthorizedDebounceMs = 3000
	DefaultLogoutDelayMs          = 500
	DefaultRedisKey               = "console:unauthorized"
	DefaultMetricsAddress         = ":9464"
	DefaultMetricsPath            = "/metrics"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // tests under test/e2e
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values the YAML left empty from well-known env vars,
// including the VITE_* names the browser console is deployed with.
func overrideEmptyConfig(cfg *Config) {
	if cfg.API.BaseURL == "" {
		for _, name := range []string{"API_BASE_URL", "VITE_API_URL"} {
			if val := os.Getenv(name); val != "" {
				cfg.API.BaseURL = val
				break
			}
		}
	}
	if !cfg.API.WithCredentials {
		if val := os.Getenv("VITE_WITH_CREDENTIALS"); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.API.WithCredentials = b
			}
		}
	}
	if cfg.API.TenantAlias == "" {
		if val := os.Getenv("TENANT_ALIAS"); val != "" {
			cfg.API.TenantAlias = val
		}
	}

	if cfg.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Redis.Address = val
		}
	}
	if cfg.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Redis.Password = val
		}
	}

	if cfg.Logging.Level == "" {
		if val := os.Getenv("LOG_LEVEL"); val != "" {
			cfg.Logging.Level = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
// A negative MaxRetries is clamped; zero is a valid setting.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "admin-console"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = DefaultTimeoutMs
	}
	if cfg.API.MaxRetries < 0 {
		cfg.API.MaxRetries = DefaultMaxRetries
	}
	if cfg.API.RetryDelay <= 0 {
		cfg.API.RetryDelay = DefaultRetryDelayMs
	}

	if cfg.Session.UnauthorizedDebounce <= 0 {
		cfg.Session.UnauthorizedDebounce = DefaultUnauthorizedDebounceMs
	}
	if cfg.Session.LogoutDelay <= 0 {
		cfg.Session.LogoutDelay = DefaultLogoutDelayMs
	}
	if cfg.Session.Debouncer == "" {
		cfg.Session.Debouncer = DebouncerMemory
	}
	if cfg.Session.RedisKey == "" {
		cfg.Session.RedisKey = DefaultRedisKey
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = DefaultMetricsAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", cfg.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", cfg.API.BaseURL)
	}

	switch cfg.Session.Debouncer {
	case DebouncerMemory:
	case DebouncerRedis:
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when session.debouncer is redis")
		}
	default:
		return fmt.Errorf("session.debouncer must be %q or %q, got %q", DebouncerMemory, DebouncerRedis, cfg.Session.Debouncer)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// Defaults returns a validated-shape config for programmatic use, e.g. tests
// that point the console at an httptest server.
func Defaults(baseURL string) *Config {
	cfg := &Config{API: APIConfig{BaseURL: baseURL}}
	applyDefaults(cfg)
	return cfg
}
