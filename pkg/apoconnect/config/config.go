package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DevJWTSecret is the signing key used when JWT_SECRET is unset.
// Validate refuses it in production.
const DevJWTSecret = "apoconnect-dev-secret-change-in-production"

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string
	Path            string
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// PostgresDSN returns the PostgreSQL connection string.
// DATABASE_URL wins over the individual settings.
func (c *DBConfig) PostgresDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	BaseURL         string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// AuthConfig holds session and password settings
type AuthConfig struct {
	JWTSecret       string
	ExpirationHours int
	BcryptCost      int
}

// Config holds all configuration
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	DB       DBConfig
	Auth     AuthConfig
}

// Load reads an optional .env file and then the process environment
func Load() *Config {
	// .env is optional
	_ = godotenv.Load()

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			BaseURL:         getEnv("BASE_URL", "http://localhost:3000"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:            getEnv("DB_PATH", "apoconnect.db"),
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			Name:            getEnv("DB_NAME", "apoconnect"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", DevJWTSecret),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24*7),
			BcryptCost:      getEnvAsInt("BCRYPT_COST", 12),
		},
	}
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks settings that would make the service unsafe or unusable
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DB.Driver != "sqlite" && c.DB.Driver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.Auth.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Auth.ExpirationHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST %d out of range", c.Auth.BcryptCost)
	}
	return nil
}

// LogFields returns the non-secret settings for the startup log line
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Env),
		zap.String("port", c.Server.Port),
		zap.String("db_driver", c.DB.Driver),
		zap.Strings("cors_origins", c.Server.AllowedOrigins),
		zap.Int("jwt_expiration_hours", c.Auth.ExpirationHours),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch strings.ToLower(getEnv(key, "")) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
