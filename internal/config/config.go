// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Reset    ResetConfig    `mapstructure:"reset"`
	Immunity ImmunityConfig `mapstructure:"immunity"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token   string `mapstructure:"token"`
	OwnerID int64  `mapstructure:"owner_id"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// GameConfig holds the chromosome economy parameters.
type GameConfig struct {
	// StartBalance is the balance every user gets on creation and at
	// each daily reset.
	StartBalance int64 `mapstructure:"start_balance"`
	// AlertThreshold is the daily received amount at which a user is
	// announced.
	AlertThreshold int64 `mapstructure:"alert_threshold"`
	// RecentDaysWindow bounds the candidate pool for random selection
	// to users seen within this many days.
	RecentDaysWindow int `mapstructure:"recent_days_window"`
}

// ResetConfig holds the daily reset instant (UTC time of day).
type ResetConfig struct {
	Hour   int `mapstructure:"hour"`
	Minute int `mapstructure:"minute"`
}

// ImmunityConfig holds statically configured immune usernames, merged
// with the per-chat immunity table at lookup time.
type ImmunityConfig struct {
	Usernames []string `mapstructure:"usernames"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, RESET_HOUR.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not found is OK, env vars can provide all config.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "chromobot")
	v.SetDefault("database.name", "chromobot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Economy defaults: 75 chromosomes per day, alert above 21 received,
	// 7-day activity window.
	v.SetDefault("game.start_balance", 75)
	v.SetDefault("game.alert_threshold", 21)
	v.SetDefault("game.recent_days_window", 7)

	// 00:00 UTC is 21:00 in Argentina, the original deployment target.
	v.SetDefault("reset.hour", 0)
	v.SetDefault("reset.minute", 0)
}

func (c *Config) validate() error {
	if c.Reset.Hour < 0 || c.Reset.Hour > 23 {
		return fmt.Errorf("reset.hour must be in [0,23], got %d", c.Reset.Hour)
	}
	if c.Reset.Minute < 0 || c.Reset.Minute > 59 {
		return fmt.Errorf("reset.minute must be in [0,59], got %d", c.Reset.Minute)
	}
	if c.Game.StartBalance < 0 {
		return fmt.Errorf("game.start_balance must be non-negative, got %d", c.Game.StartBalance)
	}
	if c.Game.RecentDaysWindow <= 0 {
		return fmt.Errorf("game.recent_days_window must be positive, got %d", c.Game.RecentDaysWindow)
	}
	return nil
}

// IsOwner checks if a user ID is the configured bot owner.
// OwnerID 0 disables the restriction.
func (c *Config) IsOwner(userID int64) bool {
	return c.Bot.OwnerID == 0 || c.Bot.OwnerID == userID
}

// RecentWindow returns the activity window as a duration.
func (c *Config) RecentWindow() time.Duration {
	return time.Duration(c.Game.RecentDaysWindow) * 24 * time.Hour
}
