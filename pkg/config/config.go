package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Market data providers
const (
	ProviderStatic   = "static"
	ProviderEODHD    = "eodhd"
	ProviderNaver    = "naver"
	ProviderPostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Market data
	MarketData MarketDataConfig
	EODHD      EODHDConfig
	Naver      NaverConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Scoring
	Model   ModelConfig
	Scoring ScoringConfig
	Watch   WatchConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// MarketDataConfig selects and tunes the price/fundamentals provider
type MarketDataConfig struct {
	Provider     string
	LookbackDays int
	RateLimit    float64 // requests per second, 0 = unlimited
	Timeout      time.Duration
	MaxRetries   int // 0: the scoring core never retries
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	APIKey  string
	BaseURL string
}

// NaverConfig holds Naver Finance configuration
type NaverConfig struct {
	BaseURL  string // item pages (fundamentals)
	ChartURL string // fchart (prices)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
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

// ModelConfig holds regression model training parameters
type ModelConfig struct {
	Seed         int64
	Epochs       int
	LearningRate float64
	BatchSize    int
}

// ScoringConfig holds weighting scheme settings
type ScoringConfig struct {
	SchemesFile   string // optional YAML file extending the built-in schemes
	DefaultScheme string
}

// WatchConfig holds the periodic rescoring job settings
type WatchConfig struct {
	Schedule string // cron expression
	Tickers  []string
	Scheme   string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		MarketData: MarketDataConfig{
			Provider:     strings.ToLower(getEnv("MARKETDATA_PROVIDER", ProviderStatic)),
			LookbackDays: getEnvAsInt("MARKETDATA_LOOKBACK_DAYS", 365),
			RateLimit:    getEnvAsFloat("MARKETDATA_RATE_LIMIT", 5),
			Timeout:      getEnvAsDuration("MARKETDATA_TIMEOUT", "15s"),
			MaxRetries:   getEnvAsInt("MARKETDATA_MAX_RETRIES", 0),
		},

		EODHD: EODHDConfig{
			APIKey:  getEnv("EODHD_API_KEY", ""),
			BaseURL: getEnv("EODHD_BASE_URL", "https://eodhd.com/api"),
		},

		Naver: NaverConfig{
			BaseURL:  getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			ChartURL: getEnv("NAVER_CHART_URL", "https://fchart.stock.naver.com"),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "1h"),
		},

		Model: ModelConfig{
			Seed:         int64(getEnvAsInt("MODEL_SEED", 42)),
			Epochs:       getEnvAsInt("MODEL_EPOCHS", 500),
			LearningRate: getEnvAsFloat("MODEL_LEARNING_RATE", 0.01),
			BatchSize:    getEnvAsInt("MODEL_BATCH_SIZE", 32),
		},

		Scoring: ScoringConfig{
			SchemesFile:   getEnv("SCORING_SCHEMES_FILE", ""),
			DefaultScheme: getEnv("SCORING_DEFAULT_SCHEME", "technical-v1"),
		},

		Watch: WatchConfig{
			Schedule: getEnv("WATCH_SCHEDULE", "0 18 * * 1-5"),
			Tickers:  getEnvAsList("WATCH_TICKERS", nil),
			Scheme:   getEnv("WATCH_SCHEME", ""),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFrom loads an explicit env file before reading configuration
// godotenv never overrides variables already set in the process environment.
func LoadFrom(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return Load()
}

// Validate re-checks the configuration after programmatic overrides
func (c *Config) Validate() error {
	return c.validate()
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.MarketData.Provider {
	case ProviderStatic, ProviderNaver:
	case ProviderEODHD:
		if c.EODHD.APIKey == "" {
			return fmt.Errorf("EODHD_API_KEY is required when MARKETDATA_PROVIDER=eodhd")
		}
	case ProviderPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when MARKETDATA_PROVIDER=postgres")
		}
	default:
		return fmt.Errorf("MARKETDATA_PROVIDER must be one of: static, eodhd, naver, postgres")
	}

	if c.MarketData.LookbackDays < 2 {
		return fmt.Errorf("MARKETDATA_LOOKBACK_DAYS must be >= 2")
	}
	if c.MarketData.RateLimit < 0 {
		return fmt.Errorf("MARKETDATA_RATE_LIMIT must be >= 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
