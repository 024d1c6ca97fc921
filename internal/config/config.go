package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	SendGrid SendGridConfig
	Account  AccountConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxConns      int32
	MigrateOnBoot bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	SSEKeepAlive   time.Duration
}

type SendGridConfig struct {
	APIKey      string
	FromName    string
	FromAddress string
}

type AccountConfig struct {
	ResetURL      string
	ResetTokenTTL time.Duration
}

type CronConfig struct {
	Enabled            bool
	StaleShiftInterval time.Duration
}

func Load() (*Config, error) {
	// Environment variables win; a missing .env is normal in containers.
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          dbPort,
		User:          getEnv("DB_USER", "postgres"),
		Password:      getEnv("DB_PASSWORD", ""),
		Name:          getEnv("DB_NAME", "eduops"),
		SSLMode:       getEnv("DB_SSL_MODE", "disable"),
		MaxConns:      int32(maxConns),
		MigrateOnBoot: getEnvBool("DB_MIGRATE_ON_BOOT", true),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	keepAlive, err := time.ParseDuration(getEnv("SSE_KEEPALIVE", "25s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SSE_KEEPALIVE: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "eduops-backend"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		SSEKeepAlive:   keepAlive,
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.SendGrid = SendGridConfig{
		APIKey:      getEnv("SENDGRID_API_KEY", ""),
		FromName:    getEnv("MAIL_FROM_NAME", "EduOps"),
		FromAddress: getEnv("MAIL_FROM_ADDRESS", ""),
	}

	resetTTL, err := time.ParseDuration(getEnv("PASSWORD_RESET_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PASSWORD_RESET_TTL: %w", err)
	}
	config.Account = AccountConfig{
		ResetURL:      getEnv("PASSWORD_RESET_URL", "http://localhost:3000/reset-password"),
		ResetTokenTTL: resetTTL,
	}

	staleShiftInterval, err := time.ParseDuration(getEnv("CRON_STALE_SHIFT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_STALE_SHIFT_INTERVAL: %w", err)
	}
	config.Cron = CronConfig{
		Enabled:            getEnvBool("CRON_ENABLED", true),
		StaleShiftInterval: staleShiftInterval,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return errors.New("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.SendGrid.APIKey == "" {
		return errors.New("SENDGRID_API_KEY is required")
	}
	if c.SendGrid.FromAddress == "" {
		return errors.New("MAIL_FROM_ADDRESS is required")
	}
	if c.Account.ResetURL == "" {
		return errors.New("PASSWORD_RESET_URL is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
