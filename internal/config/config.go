package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Chat gating policies
const (
	ChatGatingStrict = "strict"
	ChatGatingHybrid = "hybrid"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (optional, enables realtime fan-out of notifications)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Telegram (optional, enables notification delivery to linked chats)
	TelegramBotToken string

	// Security
	JWTSecret string

	// Application
	AppEnv   string
	AppPort  string
	LogLevel string

	// Rate Limiting
	RateLimitPerUser int
	RateLimitPerIP   int

	// Matchmaking
	ChatGatingPolicy string
	FeedDefaultLimit int
	FeedMaxLimit     int

	// Notifications
	NotifierWorkers   int
	NotifierQueueSize int

	// Storage retry
	StorageRetryMax    int
	StorageRetryBaseMs int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "matrimonial"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "matrimonial_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		JWTSecret: getEnv("JWT_SECRET_KEY", ""),

		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RateLimitPerUser: getEnvInt("RATE_LIMIT_PER_USER", 60),
		RateLimitPerIP:   getEnvInt("RATE_LIMIT_PER_IP", 300),

		ChatGatingPolicy: strings.ToLower(getEnv("CHAT_GATING_POLICY", ChatGatingHybrid)),
		FeedDefaultLimit: getEnvInt("FEED_DEFAULT_LIMIT", 20),
		FeedMaxLimit:     getEnvInt("FEED_MAX_LIMIT", 100),

		NotifierWorkers:   getEnvInt("NOTIFIER_WORKERS", 4),
		NotifierQueueSize: getEnvInt("NOTIFIER_QUEUE_SIZE", 1024),

		StorageRetryMax:    getEnvInt("STORAGE_RETRY_MAX", 2),
		StorageRetryBaseMs: getEnvInt("STORAGE_RETRY_BASE_MS", 50),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.ChatGatingPolicy != ChatGatingStrict && c.ChatGatingPolicy != ChatGatingHybrid {
		return fmt.Errorf("CHAT_GATING_POLICY must be %q or %q", ChatGatingStrict, ChatGatingHybrid)
	}
	if c.FeedDefaultLimit <= 0 || c.FeedMaxLimit < c.FeedDefaultLimit {
		return fmt.Errorf("FEED_DEFAULT_LIMIT must be positive and not exceed FEED_MAX_LIMIT")
	}
	if c.NotifierWorkers <= 0 || c.NotifierQueueSize <= 0 {
		return fmt.Errorf("NOTIFIER_WORKERS and NOTIFIER_QUEUE_SIZE must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.JWTSecret == "your_jwt_secret_minimum_32_chars_here_change_this" {
		return fmt.Errorf("JWT_SECRET_KEY must be changed from default in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetStorageRetryBaseDelay() time.Duration {
	return time.Duration(c.StorageRetryBaseMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
