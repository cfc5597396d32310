package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Marlvin12/perfit/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Sites   SitesConfig   `mapstructure:"sites"`
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// FetchConfig controls how store pages are fetched
type FetchConfig struct {
	RequestDelay time.Duration `mapstructure:"request_delay" validate:"gte=0"`
	MaxRetries   int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Headless     bool          `mapstructure:"headless"`
	UserAgent    string        `mapstructure:"user_agent" validate:"required"`
}

// SitesConfig points at an optional site table file
type SitesConfig struct {
	File string `mapstructure:"file"`
}

// APIConfig holds PerFit API settings
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst     int           `mapstructure:"burst" validate:"gte=0"`
}

// StorageConfig selects the storage backends. An empty LocalPath keeps the
// local partition in memory.
type StorageConfig struct {
	LocalPath     string `mapstructure:"local_path"`
	Sync          string `mapstructure:"sync" validate:"oneof=memory redis"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=Sync redis"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port" validate:"required,numeric"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration. File enables rotating file output.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// WatchConfig controls the re-scan loop
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

// Load loads configuration from defaults, an optional config file and
// PERFIT_ environment variables. An empty path searches for config.yaml in
// the working directory and ./config.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// PERFIT_API_BASE_URL overrides api.base_url
	v.SetEnvPrefix("PERFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	defaults := types.DefaultConfig()

	v.SetDefault("fetch.request_delay", defaults.RequestDelay)
	v.SetDefault("fetch.max_retries", defaults.MaxRetries)
	v.SetDefault("fetch.timeout", defaults.Timeout)
	v.SetDefault("fetch.headless", defaults.UseHeadlessBrowser)
	v.SetDefault("fetch.user_agent", defaults.UserAgent)

	v.SetDefault("sites.file", "")

	v.SetDefault("api.base_url", "https://api.perfit.ai/v1")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.rate_limit", 5)
	v.SetDefault("api.burst", 10)

	v.SetDefault("storage.local_path", "")
	v.SetDefault("storage.sync", "memory")
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "perfit:")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("watch.interval", "500ms")
}

// Validate checks the configuration
func Validate(config *Config) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("'%s' failed rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

// FetchOptions converts the fetch settings to the page client config
func (c *Config) FetchOptions() *types.Config {
	return &types.Config{
		RequestDelay:       c.Fetch.RequestDelay,
		MaxRetries:         c.Fetch.MaxRetries,
		Timeout:            c.Fetch.Timeout,
		UseHeadlessBrowser: c.Fetch.Headless,
		UserAgent:          c.Fetch.UserAgent,
	}
}
