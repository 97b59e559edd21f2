package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	EventsTopic  string

	// API Configuration
	APIPort    string
	APIHost    string
	AppBaseURL string

	// Backend system of record
	BackendBaseURL string
	BackendAPIKey  string

	// Shopify
	ShopifyClientID     string
	ShopifyClientSecret string
	ShopifyAPIVersion   string

	// Sync behavior
	SyncFreshnessWindow  time.Duration
	SyncBatchSize        int
	SyncBatchConcurrency int
	SyncPageSize         int
	SyncMaxProducts      int
	SyncTimeout          time.Duration

	// Attribution behavior
	ClickLookbackHours          int
	ClickAttributionWindowHours int

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://linkback.db"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		EventsTopic:         getEnv("EVENTS_TOPIC", "affiliate-events"),
		APIPort:             getEnv("API_PORT", "8080"),
		APIHost:             getEnv("API_HOST", "0.0.0.0"),
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:8080"),
		BackendBaseURL:      getEnv("BACKEND_BASE_URL", "http://localhost:4000/api"),
		BackendAPIKey:       getEnv("BACKEND_API_KEY", ""),
		ShopifyClientID:     getEnv("SHOPIFY_CLIENT_ID", ""),
		ShopifyClientSecret: getEnv("SHOPIFY_CLIENT_SECRET", ""),
		ShopifyAPIVersion:   getEnv("SHOPIFY_API_VERSION", "2023-10"),

		SyncFreshnessWindow:  getEnvAsDuration("SYNC_FRESHNESS_WINDOW", 5*time.Minute),
		SyncBatchSize:        getEnvAsInt("SYNC_BATCH_SIZE", 10),
		SyncBatchConcurrency: getEnvAsInt("SYNC_BATCH_CONCURRENCY", 5),
		SyncPageSize:         getEnvAsInt("SYNC_PAGE_SIZE", 250),
		SyncMaxProducts:      getEnvAsInt("SYNC_MAX_PRODUCTS", 250),
		SyncTimeout:          getEnvAsDuration("SYNC_TIMEOUT", 30*time.Second),

		ClickLookbackHours:          getEnvAsInt("CLICK_LOOKBACK_HOURS", 48),
		ClickAttributionWindowHours: getEnvAsInt("CLICK_ATTRIBUTION_WINDOW_HOURS", 24),

		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
