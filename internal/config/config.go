// Package config reads server settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDBPath is used when DB_PATH is unset.
const DefaultDBPath = "finora.db"

// Config holds the server settings.
type Config struct {
	Port            string
	DBPath          string
	AdminName       string
	AdminEmail      string
	AdminPassword   string
	SecureCookie    bool
	SessionDuration time.Duration
	LogLevel        string
	Env             string
}

// Development reports whether the server runs outside production.
func (c *Config) Development() bool {
	return c.Env != "production"
}

// Load reads files (".env" by default) into the environment and builds a
// Config from it. Missing files are skipped; variables already set in the
// environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &Config{
		Port:            GetEnvAsString("PORT", "8080"),
		DBPath:          GetEnvAsString("DB_PATH", DefaultDBPath),
		AdminName:       GetEnvAsString("ADMIN_NAME", "Admin"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		SecureCookie:    GetEnvAsBool("SECURE_COOKIE", false),
		SessionDuration: GetEnvAsDuration("SESSION_DURATION", 30*24*time.Hour),
		LogLevel:        GetEnvAsString("LOG_LEVEL", "info"),
		Env:             strings.ToLower(GetEnvAsString("APP_ENV", "development")),
	}, nil
}

// GetEnvAsString gets environment variable as string with default value
func GetEnvAsString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvAsBool gets environment variable as bool with default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvAsDuration gets environment variable as duration with default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
