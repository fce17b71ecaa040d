package config

import (
	"errors"  // For validation errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For normalizing driver names
	"time"    // For pool lifetime durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DatabaseURL    string        // Database connection string
	DBDriver       string        // Database driver: postgres, mysql or sqlite
	DBMaxOpenConns int           // Maximum open connections in the pool
	DBMaxIdleConns int           // Maximum idle connections in the pool
	DBConnLifetime time.Duration // Maximum lifetime of a pooled connection
	APIToken       string        // Shared secret required on every /api request
	LogLevel       string        // Logrus level name
	RedisAddr      string        // Redis server address, empty disables event fan-out
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	EventsPrefix   string        // Redis channel prefix for published events
	IsProd         bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),                          // Application port
		DatabaseURL:    os.Getenv("DATABASE_URL"),                           // Database connection string
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),    // Database driver
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 10),                     // Pool size
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),                      // Idle connections
		DBConnLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute), // Connection lifetime
		APIToken:       os.Getenv("API_TOKEN"),                              // Shared secret
		LogLevel:       getEnv("LOG_LEVEL", "info"),                         // Log level
		RedisAddr:      os.Getenv("REDIS_ADDR"),                             // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                             // Redis password
		RedisDB:        getInt("REDIS_DB", 0),                               // Redis database number
		EventsPrefix:   getEnv("EVENTS_CHANNEL_PREFIX", "group_ledger"),     // Channel prefix
		IsProd:         os.Getenv("IS_PROD") == "true",                      // Is production environment
	}
}

// Validate reports configuration that would leave the server unusable
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.APIToken == "" {
		errs = append(errs, errors.New("API_TOKEN is required"))
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, errors.New("DB_DRIVER must be one of postgres, mysql, sqlite"))
	}
	return errors.Join(errs...)
}

// getEnv returns the variable or the fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
