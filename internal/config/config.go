// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pantryshelf/products-service/internal/core/docdb"
	"github.com/pantryshelf/products-service/internal/core/vault"
)

// DefaultCollections are the product collections served when COLLECTIONS is unset.
var DefaultCollections = []string{"coffeetea", "oil", "spices"}

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig
	DocDB       DocDBConfig
	Retry       RetryConfig
	Collections []string
	CORS        CORSConfig
	Vault       VaultConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string
	Port            int
	GinMode         string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type           string
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RetryConfig holds the retry budgets of the connect and fetch steps.
type RetryConfig struct {
	ConnectMaxRetries int
	ConnectDelay      time.Duration
	FetchMaxRetries   int
	FetchDelay        time.Duration
}

// CORSConfig holds the cross-origin policy applied to every route.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// VaultConfig holds vault configuration.
type VaultConfig struct {
	Type  string
	Files []string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			GinMode:         getEnv("GIN_MODE", "release"),
			RequestTimeout:  time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		DocDB: DocDBConfig{
			Type:           getEnv("DOCDB_TYPE", "mongodb"),
			URI:            getEnv("MONGO_URI", getEnv("MONGODB_URI", "")),
			Database:       getEnv("MONGODB_DATABASE", ""),
			ConnectTimeout: time.Duration(getEnvAsInt("MONGODB_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Retry: RetryConfig{
			ConnectMaxRetries: getEnvAsInt("CONNECT_MAX_RETRIES", 3),
			ConnectDelay:      time.Duration(getEnvAsInt("CONNECT_RETRY_DELAY_MS", 1000)) * time.Millisecond,
			FetchMaxRetries:   getEnvAsInt("FETCH_MAX_RETRIES", 3),
			FetchDelay:        time.Duration(getEnvAsInt("FETCH_RETRY_DELAY_MS", 1000)) * time.Millisecond,
		},
		Collections: getEnvAsList("COLLECTIONS", DefaultCollections),
		CORS: CORSConfig{
			AllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
		},
		Vault: VaultConfig{
			Type:  getEnv("VAULT_TYPE", "dotenv"),
			Files: getEnvAsList("VAULT_DOTENV_FILES", nil),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.DocDB.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if _, err := docdb.ParseType(c.DocDB.Type); err != nil {
		return err
	}
	if _, err := vault.ParseType(c.Vault.Type); err != nil {
		return err
	}
	if len(c.Collections) == 0 {
		return fmt.Errorf("at least one collection is required")
	}
	if c.Retry.ConnectMaxRetries < 0 || c.Retry.FetchMaxRetries < 0 {
		return fmt.Errorf("retry counts must not be negative")
	}
	if c.Retry.ConnectDelay < 0 || c.Retry.FetchDelay < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList gets a comma separated environment variable. A variable set to "-"
// yields an empty list.
func getEnvAsList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	if value == "-" {
		return []string{}
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
