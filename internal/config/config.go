package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Logger         LoggerConfig
	Backend        BackendConfig
	Storage        StorageConfig
	Cache          CacheConfig
	Events         EventsConfig
	Telemetry      TelemetryConfig
	MigrateOnStart bool
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	URL             string // overrides the individual fields when set
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// BackendConfig identifies the hosted Supabase project. The anon key doubles
// as the API key the dashboard sends with every request.
type BackendConfig struct {
	URL     string
	AnonKey string
}

// StorageConfig holds the S3-compatible bucket used for product images.
type StorageConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string // defaults to the Supabase storage S3 endpoint
	AccessKeyID     string
	SecretAccessKey string
}

// CacheConfig holds image URL cache configuration.
type CacheConfig struct {
	RedisURL string // empty means in-process cache
	TTL      time.Duration
}

// EventsConfig holds Kafka configuration for inventory change events.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// TelemetryConfig holds metrics and tracing configuration.
type TelemetryConfig struct {
	ServiceName     string
	TracingEnabled  bool
	TracingEndpoint string
}

// Load loads configuration from environment variables, reading a .env file
// first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	backendURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "postgres"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Backend: BackendConfig{
			URL:     backendURL,
			AnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Bucket:          getEnv("STORAGE_BUCKET", "images"),
			Region:          getEnv("STORAGE_REGION", "eu-central-1"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", storageEndpoint(backendURL)),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      time.Duration(getEnvAsInt("IMAGE_CACHE_TTL", 600)) * time.Second,
		},
		Events: EventsConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "inventory.changed"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "calcio-stop"),
			TracingEnabled:  getEnvAsBool("OTEL_TRACING_ENABLED", false),
			TracingEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
		MigrateOnStart: getEnvAsBool("MIGRATE_ON_START", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}

	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid SUPABASE_URL: %s", c.Backend.URL)
	}

	if c.Backend.AnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}

	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}

		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}

		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}

		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Storage.Enabled {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required when storage is enabled")
		}
		if c.Storage.Region == "" {
			return fmt.Errorf("storage region is required when storage is enabled")
		}
		if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
			return fmt.Errorf("storage credentials are required when storage is enabled")
		}
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("image cache TTL must be positive")
	}

	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are configured")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PublicURL returns the public object URL for a storage key.
func (c *BackendConfig) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.URL, bucket, key)
}

func storageEndpoint(backendURL string) string {
	if backendURL == "" {
		return ""
	}
	return backendURL + "/storage/v1/s3"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable.
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
