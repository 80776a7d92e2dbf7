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

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Timesheet TimesheetConfig
	Cron      CronConfig
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxConns   int32
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL string
}

// TimesheetConfig holds attendance calculation settings
type TimesheetConfig struct {
	ExpectedHours float64
	CacheTTL      time.Duration
}

type CronConfig struct {
	AutoCloseInterval time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine: the environment may come from the container
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbMaxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "10"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		MaxConns:   int32(dbMaxConns),
		SQLitePath: getEnv("SQLITE_PATH", "timesheet.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Europe/London"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	jwtAccessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: jwtAccessExpiration,
	}

	// Timesheet configuration
	expectedHours, err := strconv.ParseFloat(getEnv("TIMESHEET_EXPECTED_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMESHEET_EXPECTED_HOURS: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("TIMESHEET_CACHE_TTL", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMESHEET_CACHE_TTL: %w", err)
	}

	config.Timesheet = TimesheetConfig{
		ExpectedHours: expectedHours,
		CacheTTL:      cacheTTL,
	}

	// Cron configuration
	autoCloseInterval, err := time.ParseDuration(getEnv("CRON_AUTO_CLOSE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_AUTO_CLOSE_INTERVAL: %w", err)
	}

	config.Cron = CronConfig{
		AutoCloseInterval: autoCloseInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Database.MaxConns <= 0 {
			return fmt.Errorf("DB_MAX_CONNS must be positive")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Timesheet.ExpectedHours <= 0 || c.Timesheet.ExpectedHours > 24 {
		return fmt.Errorf("TIMESHEET_EXPECTED_HOURS must be between 0 and 24")
	}
	if c.Timesheet.CacheTTL <= 0 {
		return fmt.Errorf("TIMESHEET_CACHE_TTL must be positive")
	}
	if c.Cron.AutoCloseInterval <= 0 {
		return fmt.Errorf("CRON_AUTO_CLOSE_INTERVAL must be positive")
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

// Location returns the configured timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// AllowedOrigins splits FRONTEND_URL on commas
func (c *Config) AllowedOrigins() []string {
	return splitCSV(c.App.FrontendURL)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitCSV(value string) []string {
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
