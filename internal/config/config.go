package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Env      string // "dev" or "prod"
	Database DatabaseConfig
	Log      LogConfig
	Session  SessionConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// LogConfig controls the audit log.
type LogConfig struct {
	File  string // empty means stderr
	Level string
}

// SessionConfig carries credentials supplied through the environment instead
// of command-line flags.
type SessionConfig struct {
	Username string
	Password string
}

// Load reads an optional .env file from the working directory and then builds
// the configuration from environment variables with defaults. Variables that
// are already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env: strings.ToLower(getEnv("APP_ENV", "dev")),
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "Grocerify_Database.db"),
		},
		Log: LogConfig{
			File:  getEnv("LOG_FILE", "log.txt"),
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Session: SessionConfig{
			Username: getEnv("GROCERIFY_USER", ""),
			Password: getEnv("GROCERIFY_PASSWORD", ""),
		},
	}

	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("APP_ENV must be dev or prod, got %q", cfg.Env)
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		return nil, fmt.Errorf("DB_PATH must not be empty")
	}
	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	user := c.Session.Username
	if user == "" {
		user = "-"
	}
	return fmt.Sprintf("Config{Env: %s, DB: %s, Log: %s (%s), User: %s, Password: *** (masked) ***}",
		c.Env, c.Database.Path, c.Log.File, c.Log.Level, user)
}
