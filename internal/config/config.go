package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Reminders RemindersConfig `yaml:"reminders"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Timezone  string          `yaml:"timezone"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TelegramConfig struct {
	Token     string `yaml:"token"`
	SeatLimit int    `yaml:"seat_limit"`
}

type RemindersConfig struct {
	Enabled   bool `yaml:"enabled"`
	StartHour int  `yaml:"start_hour"`
	EndHour   int  `yaml:"end_hour"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Location resolves the configured IANA timezone. All day bucketing for
// load windows and record consolidation happens in this zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix WUJI_ and underscore-separated paths:
//
//	WUJI_SERVER_HOST, WUJI_SERVER_PORT,
//	WUJI_DB_PATH, WUJI_AUTH_API_KEY,
//	WUJI_TELEGRAM_TOKEN, WUJI_TELEGRAM_SEAT_LIMIT,
//	WUJI_TIMEZONE
func Load(path string) (*Config, error) {
	cfg := &Config{
		Database:  DatabaseConfig{Path: "wuji.db"},
		Telegram:  TelegramConfig{SeatLimit: 3},
		Reminders: RemindersConfig{StartHour: 10, EndHour: 21},
		Timezone:  "Europe/Moscow",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WUJI_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WUJI_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WUJI_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("WUJI_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("WUJI_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("WUJI_TELEGRAM_SEAT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Telegram.SeatLimit = n
		}
	}
	if v := os.Getenv("WUJI_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Telegram.SeatLimit < 1 {
		return fmt.Errorf("telegram.seat_limit must be at least 1")
	}
	if c.Reminders.StartHour < 0 || c.Reminders.StartHour > 23 ||
		c.Reminders.EndHour < 0 || c.Reminders.EndHour > 23 {
		return fmt.Errorf("reminders hours must be within 0..23")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}
