package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "GIN_MODE", "DB_PATH", "JWT_SECRET", "JWT_TTL", "AUTO_ROLE",
		"ORDER_TIMEZONE", "LOG_LEVEL", "LOG_FORMAT", "KAFKA_BROKERS", "KAFKA_TOPIC"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Auth.AutoRole, "auto role must be opt-in")
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = "70000" }, true},
		{"non numeric port", func(c *Config) { c.Server.Port = "http" }, true},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"dev secret in release", func(c *Config) { c.Server.GinMode = "release" }, true},
		{"unknown timezone", func(c *Config) { c.Orders.Timezone = "Mars/Olympus" }, true},
		{"unknown gin mode", func(c *Config) { c.Server.GinMode = "turbo" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"brokers without topic", func(c *Config) { c.Events.Brokers = []string{"k:9092"}; c.Events.Topic = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
orders:
  timezone: "UTC"
auth:
  jwt_secret: "from-file"
  auto_role: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DB_PATH", "env.db")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "env.db", cfg.Database.Path)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.AutoRole)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.Brokers)
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestLoadRejectsBadAutoRole(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTO_ROLE", "sometimes")
	_, err := Load("")
	assert.Error(t, err)
}

func TestStringMasksSecret(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "super-secret"
	assert.NotContains(t, cfg.String(), "super-secret")
}

func TestOpenDBMigrates(t *testing.T) {
	db, err := OpenDB("file:config_open_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	for _, m := range Models {
		assert.True(t, db.Migrator().HasTable(m))
	}
}
