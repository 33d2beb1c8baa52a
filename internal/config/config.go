package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Report    ReportConfig    `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"DATABASE_PATH"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type AuthConfig struct {
	DefaultPassword string        `mapstructure:"AUTH_DEFAULT_PASSWORD"`
	MaxAttempts     int           `mapstructure:"AUTH_MAX_ATTEMPTS"`
	LockoutWindow   time.Duration `mapstructure:"AUTH_LOCKOUT_WINDOW"`
}

type ReportConfig struct {
	OutputDir       string        `mapstructure:"REPORT_OUTPUT_DIR"`
	SummaryCacheTTL time.Duration `mapstructure:"REPORT_SUMMARY_CACHE_TTL"`
}

type SchedulerConfig struct {
	AuditSpec string `mapstructure:"SCHEDULER_AUDIT_SPEC"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	viper.SetDefault("DATABASE_PATH", "loanApp.db")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AUTH_DEFAULT_PASSWORD", "admin")
	viper.SetDefault("AUTH_MAX_ATTEMPTS", 5)
	viper.SetDefault("AUTH_LOCKOUT_WINDOW", "15m")
	viper.SetDefault("REPORT_OUTPUT_DIR", ".")
	viper.SetDefault("REPORT_SUMMARY_CACHE_TTL", "5m")
	viper.SetDefault("SCHEDULER_AUDIT_SPEC", "0 0 0 * * *")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.Auth.MaxAttempts < 0 {
		return fmt.Errorf("AUTH_MAX_ATTEMPTS must not be negative")
	}

	if c.Auth.MaxAttempts > 0 && c.Auth.LockoutWindow <= 0 {
		return fmt.Errorf("AUTH_LOCKOUT_WINDOW must be positive when lockout is enabled")
	}

	if c.Report.SummaryCacheTTL < 0 {
		return fmt.Errorf("REPORT_SUMMARY_CACHE_TTL must not be negative")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// LockoutEnabled reports whether failed-login lockout is active.
func (c *Config) LockoutEnabled() bool {
	return c.Auth.MaxAttempts > 0
}
