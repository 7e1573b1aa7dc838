// Package config provides configuration management for the screening
// server using Viper: yaml file, environment overrides, and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Screening ScreeningConfig `mapstructure:"screening"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	// Backend is "sqlite" (standalone) or "postgres" (server).
	Backend        string `mapstructure:"backend"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	PostgresURL    string `mapstructure:"postgres_url"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// ScreeningConfig exposes the screening policy constants. These are
// product policy; the defaults match the reference behavior.
type ScreeningConfig struct {
	ActivationThreshold float64 `mapstructure:"activation_threshold"`
	SymptomWindowDays   int     `mapstructure:"symptom_window_days"`
	DedupWindowDays     int     `mapstructure:"dedup_window_days"`
	FollowUpDays        int     `mapstructure:"follow_up_days"`
	SymptomWeight       float64 `mapstructure:"symptom_weight"`
	RiskFactorWeight    float64 `mapstructure:"risk_factor_weight"`
	IrregularityWeight  float64 `mapstructure:"irregularity_weight"`
	DefaultCycleLength  float64 `mapstructure:"default_cycle_length"`
	DefaultPeriodLength int     `mapstructure:"default_period_length"`
}

// SchedulerConfig holds the follow-up sweep settings.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}

// CacheConfig holds the in-process screening result cache settings.
type CacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds API rate limit settings.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Manager loads and validates the configuration.
type Manager struct {
	config *Config
}

// NewManager creates a configuration manager and loads configuration
// from file, environment, and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/lunacycle-screening-server/")

	viper.SetEnvPrefix("LUNACYCLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("database.backend", "sqlite")
	viper.SetDefault("database.sqlite_path", "./data/screening.db")
	viper.SetDefault("database.postgres_url", "")
	viper.SetDefault("database.migrations_path", "./internal/database/migrations")

	viper.SetDefault("screening.activation_threshold", 0.40)
	viper.SetDefault("screening.symptom_window_days", 90)
	viper.SetDefault("screening.dedup_window_days", 30)
	viper.SetDefault("screening.follow_up_days", 30)
	viper.SetDefault("screening.symptom_weight", 0.7)
	viper.SetDefault("screening.risk_factor_weight", 0.2)
	viper.SetDefault("screening.irregularity_weight", 0.1)
	viper.SetDefault("screening.default_cycle_length", 28)
	viper.SetDefault("screening.default_period_length", 5)

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.cron_spec", "0 9 * * *") // daily 09:00 sweep

	viper.SetDefault("cache.max_entries", 1000)
	viper.SetDefault("cache.ttl", "15m")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 10)
	viper.SetDefault("rate_limit.burst", 20)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Validate checks the configuration for internally consistent values.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Database.Backend {
	case "sqlite":
		if cfg.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	case "postgres":
		if cfg.Database.PostgresURL == "" {
			return fmt.Errorf("postgres_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid database backend: %s", cfg.Database.Backend)
	}

	if cfg.Screening.ActivationThreshold < 0 || cfg.Screening.ActivationThreshold > 1 {
		return fmt.Errorf("activation threshold %f outside [0,1]", cfg.Screening.ActivationThreshold)
	}
	weightSum := cfg.Screening.SymptomWeight + cfg.Screening.RiskFactorWeight + cfg.Screening.IrregularityWeight
	if weightSum <= 0 || weightSum > 1.000001 {
		return fmt.Errorf("scoring weights sum to %f, expected (0,1]", weightSum)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	return nil
}
