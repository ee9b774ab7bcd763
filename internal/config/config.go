package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig

	RabbitMQ     RabbitMQConfig
	Maps         MapsConfig
	Advisory     AdvisoryConfig
	Settlement   SettlementConfig
	Notification NotificationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// ApplySchema creates missing tables at startup.
	ApplySchema bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// RabbitMQConfig holds the notification broker configuration. An empty URL
// falls back to logging notifications.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// MapsConfig holds Google Maps configuration for ETA estimates.
type MapsConfig struct {
	APIKey  string
	Timeout time.Duration
}

// AdvisoryConfig holds the route/weather advisory service configuration.
type AdvisoryConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SettlementConfig holds commission settings.
type SettlementConfig struct {
	CommissionKey         string
	DefaultCommissionRate float64 // percent
	RateCacheTTL          time.Duration
}

// NotificationConfig holds notification retry settings.
type NotificationConfig struct {
	MaxRetries int
	Backoff    time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "freight"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			ApplySchema:     getBoolEnv("DB_APPLY_SCHEMA", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "freight-trip-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_NOTIFICATION_QUEUE", "trip.notifications"),
		},
		Maps: MapsConfig{
			APIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
			Timeout: getDurationEnv("MAPS_TIMEOUT", 3*time.Second),
		},
		Advisory: AdvisoryConfig{
			BaseURL: getEnv("ADVISORY_BASE_URL", ""),
			APIKey:  getEnv("ADVISORY_API_KEY", ""),
			Timeout: getDurationEnv("ADVISORY_TIMEOUT", 3*time.Second),
		},
		Settlement: SettlementConfig{
			CommissionKey:         getEnv("COMMISSION_SETTING_KEY", "commission.default_rate_pct"),
			DefaultCommissionRate: getFloatEnv("COMMISSION_DEFAULT_RATE_PCT", 5),
			RateCacheTTL:          getDurationEnv("COMMISSION_CACHE_TTL", time.Minute),
		},
		Notification: NotificationConfig{
			MaxRetries: getIntEnv("NOTIFICATION_MAX_RETRIES", 2),
			Backoff:    getDurationEnv("NOTIFICATION_BACKOFF", 200*time.Millisecond),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
