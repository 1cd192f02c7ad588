package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone lookups without system zoneinfo

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Orders   OrdersConfig   `yaml:"orders"`
	Log      LogConfig      `yaml:"log"`
	Events   EventsConfig   `yaml:"events"`
}

type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"` // debug, release, test
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite file path or DSN
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	// AutoRole lets self-registration infer a role from the email address.
	// Demo convenience only; leave off in production.
	AutoRole bool `yaml:"auto_role"`
}

type OrdersConfig struct {
	// Timezone is the IANA zone whose calendar day bounds the doctor quota.
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type EventsConfig struct {
	Brokers []string `yaml:"brokers"` // empty disables publishing
	Topic   string   `yaml:"topic"`
}

const devSecret = "hospital_meal_dev_secret"

// Default returns a configuration suitable for local development.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080", GinMode: "debug"},
		Database: DatabaseConfig{Path: "hospital_meal.db"},
		Auth:     AuthConfig{JWTSecret: devSecret, TokenTTL: 24 * time.Hour},
		Orders:   OrdersConfig{Timezone: "Asia/Jakarta"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Events:   EventsConfig{Topic: "meal-orders"},
	}
}

// LoadFromFile reads a YAML config file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load layers defaults, an optional YAML file and environment variables, then
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Orders.Timezone = getEnv("ORDER_TIMEZONE", c.Orders.Timezone)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Events.Topic = getEnv("KAFKA_TOPIC", c.Events.Topic)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Events.Brokers = brokers
	}
	if v := os.Getenv("AUTO_ROLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTO_ROLE: %w", err)
		}
		c.Auth.AutoRole = b
	}
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	return nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q: must be between 1 and 65535", c.Server.Port)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin mode %q", c.Server.GinMode)
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT secret is required")
	}
	if c.Auth.JWTSecret == devSecret && c.Server.GinMode == "release" {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if _, err := time.LoadLocation(c.Orders.Timezone); err != nil {
		return fmt.Errorf("invalid order timezone %q: %w", c.Orders.Timezone, err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return errors.New("events topic is required when brokers are configured")
	}
	return nil
}

// Location returns the ordering timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Orders.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s, Timezone: %s, AutoRole: %t, Brokers: %v, Auth: *** (masked) ***}",
		c.Server.Port, c.Database.Path, c.Orders.Timezone, c.Auth.AutoRole, c.Events.Brokers)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
