package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string

	// Logging
	LogLevel string

	// Backup
	AppName   string
	BackupDir string

	// Session cache
	SessionCacheSize int
	SessionCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/calcula.db"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AppName:   getEnv("APP_NAME", "calcula"),
		BackupDir: getEnv("BACKUP_DIR", "."),

		SessionCacheSize: getEnvInt("SESSION_CACHE_SIZE", 16),
		SessionCacheTTL:  getEnvDuration("SESSION_CACHE_TTL", 12*time.Hour),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{BackendSQLite, BackendMemory}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if strings.TrimSpace(c.AppName) == "" {
		errors = append(errors, "app name cannot be empty")
	} else if strings.ContainsAny(c.AppName, `/\`) {
		errors = append(errors, fmt.Sprintf("invalid app name '%s': must not contain path separators", c.AppName))
	}

	if c.BackupDir == "" {
		errors = append(errors, "backup directory cannot be empty")
	} else if info, err := os.Stat(c.BackupDir); err == nil && !info.IsDir() {
		errors = append(errors, fmt.Sprintf("backup directory '%s' is not a directory", c.BackupDir))
	}

	if c.SessionCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid session cache size %d: must be at least 1", c.SessionCacheSize))
	} else if c.SessionCacheSize > 1024 {
		errors = append(errors, fmt.Sprintf("invalid session cache size %d: must be at most 1024", c.SessionCacheSize))
	}

	if c.SessionCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid session cache TTL %v: must not be negative", c.SessionCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
