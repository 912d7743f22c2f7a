package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the catalog bridge service
type Config struct {
	// Server
	Port        string
	Environment string

	// Database. When DATABASE_URL is empty the service falls back to an
	// embedded SQLite file so the tool runs standalone.
	DatabaseURL string
	SQLitePath  string

	// GCP
	GCPProjectID string

	// Orchestra ERP (source system)
	OrchestraIdentityURL  string
	OrchestraBaseURL      string
	OrchestraClientID     string
	OrchestraClientSecret string

	// Shopify (target system)
	ShopifyStoreURL    string
	ShopifyAccessToken string

	// Optional description enrichment
	GeminiAPIKey string

	// Settings-at-rest encryption passphrase
	SettingsEncryptionKey string

	// Catalog defaults
	CatalogPageSize int

	// Outbound HTTP
	HTTPTimeout      time.Duration
	ShopifyRateLimit int // requests per second
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "qualipieces.db"),

		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),

		OrchestraIdentityURL:  getEnv("ORCHESTRA_IDENTITY_URL", "https://erp.ecopak.ca/Identity/connect/token"),
		OrchestraBaseURL:      getEnv("ORCHESTRA_BASE_URL", "https://erp.ecopak.ca/OrchestraQualipiecesApiTest"),
		OrchestraClientID:     getEnv("ORCHESTRA_CLIENT_ID", ""),
		OrchestraClientSecret: getEnv("ORCHESTRA_CLIENT_SECRET", ""),

		ShopifyStoreURL:    getEnv("SHOPIFY_STORE_URL", ""),
		ShopifyAccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		SettingsEncryptionKey: getEnv("SETTINGS_ENCRYPTION_KEY", ""),

		CatalogPageSize: getEnvAsInt("CATALOG_PAGE_SIZE", 50),

		HTTPTimeout:      getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		ShopifyRateLimit: getEnvAsInt("SHOPIFY_RATE_LIMIT", 2),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
