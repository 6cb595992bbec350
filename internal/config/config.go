package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Security  SecurityConfig  `mapstructure:"security"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" default:"8080"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" default:"15s"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" default:"15s"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"30s"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" default:"disable"`
}

// IdentityConfig describes how session tokens issued by the external
// identity provider are verified locally.
type IdentityConfig struct {
	Issuer       string        `mapstructure:"issuer"`
	Audience     string        `mapstructure:"audience"`
	Secret       string        `mapstructure:"secret"`
	PrincipalTTL time.Duration `mapstructure:"principal_ttl" default:"5m"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" default:"redis://localhost:6379"`
	MaxRetries   int           `mapstructure:"max_retries" default:"3"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" default:"100ms"`
	PoolSize     int           `mapstructure:"pool_size" default:"10"`
	MinIdleConns int           `mapstructure:"min_idle_conns" default:"2"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" default:"true"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"20"`
	Burst             int     `mapstructure:"burst" default:"40"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size" default:"100"`
	PollInterval  time.Duration `mapstructure:"poll_interval" default:"5s"`
	RetryAttempts int           `mapstructure:"retry_attempts" default:"3"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" default:"5s"`
}

// LoadConfig reads config.yml and applies CLINICPORTAL_* environment
// overrides on top.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("clinicportal", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	return &config, nil
}
