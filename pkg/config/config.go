package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Domain
	Pricing  PricingConfig
	Supplier SupplierConfig
	Store    StoreConfig
	Serp     SerpConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// PricingConfig holds the pricing policy knobs
// ⭐ SSOT: 가격 정책 파라미터는 여기서만 정의
type PricingConfig struct {
	QualityThreshold int             // minimum supplier quality score (0-100)
	MarkupMultiplier decimal.Decimal // fallback markup when no competitor data
	ChangeThreshold  decimal.Decimal // minimum absolute delta to apply an update
	SanityMultiplier decimal.Decimal // margin floor above current*multiplier is flagged
	Workers          int             // products processed concurrently per cycle
	SyncSchedule     string          // cron expression (with seconds) for the sync job
}

// SupplierConfig holds supplier API settings
type SupplierConfig struct {
	FetchTimeout time.Duration
	// Credentials maps an entry's credential reference to a bearer token,
	// resolved once at Load() from SUPPLIER_CRED_<REF> variables.
	Credentials map[string]string
	RateLimit   int // requests per window, 0 disables
	RateWindow  time.Duration
}

// StoreConfig holds the external store push endpoint settings
type StoreConfig struct {
	BaseURL     string
	APIKey      string
	PushTimeout time.Duration
}

// SerpConfig holds the competitor price source settings
type SerpConfig struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8094"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Pricing policy
		Pricing: PricingConfig{
			QualityThreshold: getEnvAsInt("PRICING_QUALITY_THRESHOLD", 70),
			MarkupMultiplier: getEnvAsDecimal("PRICING_MARKUP_MULTIPLIER", "2.50"),
			ChangeThreshold:  getEnvAsDecimal("PRICING_CHANGE_THRESHOLD", "0.05"),
			SanityMultiplier: getEnvAsDecimal("PRICING_SANITY_MULTIPLIER", "3.0"),
			Workers:          getEnvAsInt("PRICING_WORKERS", 4),
			SyncSchedule:     getEnv("PRICING_SYNC_SCHEDULE", "0 0 */6 * * *"),
		},

		// Supplier APIs
		Supplier: SupplierConfig{
			FetchTimeout: getEnvAsDuration("SUPPLIER_FETCH_TIMEOUT", "8s"),
			Credentials:  loadSupplierCredentials(),
			RateLimit:    getEnvAsInt("SUPPLIER_RATE_LIMIT", 0),
			RateWindow:   getEnvAsDuration("SUPPLIER_RATE_WINDOW", "1s"),
		},

		// Store push (optional)
		Store: StoreConfig{
			BaseURL:     getEnv("STORE_BASE_URL", ""),
			APIKey:      getEnv("STORE_API_KEY", ""),
			PushTimeout: getEnvAsDuration("STORE_PUSH_TIMEOUT", "8s"),
		},

		// Competitor prices
		Serp: SerpConfig{
			BaseURL:  getEnv("SERP_BASE_URL", ""),
			APIKey:   getEnv("SERP_API_KEY", ""),
			CacheTTL: getEnvAsDuration("SERP_CACHE_TTL", "15m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Credential resolves a supplier credential reference loaded at startup.
// The boolean reports whether the reference is configured.
func (c *Config) Credential(ref string) (string, bool) {
	token, ok := c.Supplier.Credentials[strings.ToUpper(ref)]
	return token, ok
}

// StoreConfigured reports whether the external store push is configured
func (c *Config) StoreConfigured() bool {
	return c.Store.BaseURL != "" && c.Store.APIKey != ""
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pricing.QualityThreshold < 0 || c.Pricing.QualityThreshold > 100 {
		return fmt.Errorf("PRICING_QUALITY_THRESHOLD must be within 0-100")
	}

	if c.Pricing.ChangeThreshold.IsNegative() {
		return fmt.Errorf("PRICING_CHANGE_THRESHOLD must not be negative")
	}

	if !c.Pricing.MarkupMultiplier.IsPositive() {
		return fmt.Errorf("PRICING_MARKUP_MULTIPLIER must be positive")
	}

	if c.Pricing.Workers < 1 {
		return fmt.Errorf("PRICING_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// loadSupplierCredentials collects every SUPPLIER_CRED_<REF> variable.
// Resolution happens exactly once here so the collector never touches
// the process environment.
func loadSupplierCredentials() map[string]string {
	const prefix = "SUPPLIER_CRED_"

	creds := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		ref := strings.TrimPrefix(key, prefix)
		if ref == "" || value == "" {
			continue
		}
		creds[ref] = value
	}
	return creds
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		value, _ = decimal.NewFromString(defaultValue)
	}

	return value
}
