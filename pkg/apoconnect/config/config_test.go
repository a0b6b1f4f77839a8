package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "DB_DRIVER", "JWT_SECRET", "BCRYPT_COST", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, DevJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://apo:secret@db:5432/apo")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_LOG_LEVEL", "silent")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://apo:secret@db:5432/apo", cfg.DB.PostgresDSN())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestPostgresDSNFromParts(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5433", User: "apo", Password: "pw", Name: "apoconnect", SSLMode: "require"}

	assert.Equal(t, "host=db port=5433 user=apo password=pw dbname=apoconnect sslmode=require", db.PostgresDSN())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:    "development",
			Server: ServerConfig{Port: "8080"},
			DB:     DBConfig{Driver: "sqlite"},
			Auth:   AuthConfig{JWTSecret: DevJWTSecret, ExpirationHours: 24, BcryptCost: 12},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"dev secret in production", func(c *Config) { c.Env = "production" }},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"bcrypt cost too high", func(c *Config) { c.Auth.BcryptCost = 40 }},
		{"no port", func(c *Config) { c.Server.Port = "" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
