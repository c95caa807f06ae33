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
	Env  string // development, staging, production, test

	// Lot feed
	Feed FeedConfig

	// Annual dividend goal used for target achievement (0 = unset)
	AnnualTarget decimal.Decimal

	// Optional YAML policy file with signal/diagnostic thresholds
	PolicyFile string

	// Market data provider
	Yahoo YahooConfig

	// Caching and refresh bounds
	Cache CacheConfig

	// Redis (optional shared cache tier)
	Redis RedisConfig

	// Watch mode
	Watch WatchConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// FeedConfig describes where the lot sheet lives
type FeedConfig struct {
	URL            string
	Format         string   // auto, csv, html
	TickerSuffixes []string // e.g. [".TW", ".TWO"]; empty disables the filter
}

// YahooConfig holds Yahoo Finance client configuration
type YahooConfig struct {
	BaseURL    string
	CookieURL  string // session cookie host for the crumb handshake
	RateLimit  int    // requests per second
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration // first backoff delay, doubled per retry
}

// CacheConfig holds memoization windows
type CacheConfig struct {
	ReportTTL      time.Duration
	MetadataTTL    time.Duration
	RefreshTimeout time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// WatchConfig holds the cron schedule used by the watch command
type WatchConfig struct {
	Schedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Feed: FeedConfig{
			URL:            getEnv("FEED_URL", ""),
			Format:         strings.ToLower(getEnv("FEED_FORMAT", "auto")),
			TickerSuffixes: getEnvAsList("FEED_TICKER_SUFFIXES"),
		},

		AnnualTarget: getEnvAsDecimal("ANNUAL_TARGET", decimal.Zero),
		PolicyFile:   getEnv("POLICY_FILE", ""),

		Yahoo: YahooConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			CookieURL:  getEnv("YAHOO_COOKIE_URL", "https://fc.yahoo.com"),
			RateLimit:  getEnvAsInt("YAHOO_RATE_LIMIT", 5),
			Timeout:    getEnvAsDuration("HTTP_TIMEOUT", "10s"),
			MaxRetries: getEnvAsInt("HTTP_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("HTTP_RETRY_DELAY", "500ms"),
		},

		Cache: CacheConfig{
			ReportTTL:      getEnvAsDuration("CACHE_TTL", "2m"),
			MetadataTTL:    getEnvAsDuration("METADATA_TTL", "10m"),
			RefreshTimeout: getEnvAsDuration("REFRESH_TIMEOUT", "20s"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Watch: WatchConfig{
			Schedule: getEnv("WATCH_SCHEDULE", "@every 2m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// RequireFeed reports an error when no lot feed URL is configured.
// Commands that only diagnose a single ticker do not need it.
func (c *Config) RequireFeed() error {
	if strings.TrimSpace(c.Feed.URL) == "" {
		return fmt.Errorf("FEED_URL is required")
	}
	return nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	switch c.Feed.Format {
	case "auto", "csv", "html":
	default:
		return fmt.Errorf("FEED_FORMAT must be one of: auto, csv, html")
	}

	if c.AnnualTarget.IsNegative() {
		return fmt.Errorf("ANNUAL_TARGET must not be negative")
	}

	if c.Yahoo.RateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be positive")
	}

	if c.Cache.ReportTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := strings.ReplaceAll(os.Getenv(key), ",", "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.ToUpper(item))
		}
	}
	return items
}
