// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/hindsight/internal/utils"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for all databases (always absolute)
	HistoricalDataPath string // Optional .json or .msgpack dataset; empty uses the embedded dataset
	LogLevel           string
	Port               int
	DevMode            bool

	// CacheTTL bounds how old a cached price may be before it is ignored.
	// Zero keeps every cached price usable regardless of age.
	CacheTTL      time.Duration
	HTTPTimeout   time.Duration
	EquityTimeout time.Duration

	Sources    SourcesConfig
	Scheduler  SchedulerConfig
	Backup     *BackupConfig
	WarmupCoin []string // Crypto ids refreshed by the warm-up job
}

// SourcesConfig holds the base URLs of the live price sources
type SourcesConfig struct {
	TCMBURL          string
	ExchangeRateURL  string
	CoinGeckoURL     string
	BigParaURL       string
	ProxyURL         string
	ConnectivityURL  string
	ConnectivityWait time.Duration
}

// SchedulerConfig holds cron schedules for background jobs
type SchedulerConfig struct {
	RatesWarmup   string
	CacheCleanup  string
	DatabaseCheck string
	Maintenance   string
}

// BackupConfig holds S3-compatible backup configuration
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // Custom endpoint for R2/MinIO; empty uses AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Schedule        string
	RetentionDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("HINDSIGHT_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		HistoricalDataPath: getEnv("HISTORICAL_DATA_PATH", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnvAsInt("PORT", 8080),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		CacheTTL:           getEnvAsDuration("CACHE_TTL", 0),
		HTTPTimeout:        getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		EquityTimeout:      getEnvAsDuration("EQUITY_TIMEOUT", 5*time.Second),
		Sources: SourcesConfig{
			TCMBURL:          getEnv("TCMB_URL", "https://www.tcmb.gov.tr/kurlar/today.xml"),
			ExchangeRateURL:  getEnv("EXCHANGERATE_URL", "https://api.exchangerate-api.com/v4/latest"),
			CoinGeckoURL:     getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
			BigParaURL:       getEnv("BIGPARA_URL", "https://bigpara.hurriyet.com.tr"),
			ProxyURL:         getEnv("PROXY_URL", "https://api.allorigins.win"),
			ConnectivityURL:  getEnv("CONNECTIVITY_PROBE_URL", "https://clients3.google.com/generate_204"),
			ConnectivityWait: getEnvAsDuration("CONNECTIVITY_TIMEOUT", 3*time.Second),
		},
		Scheduler: SchedulerConfig{
			RatesWarmup:   getEnv("RATES_WARMUP_SCHEDULE", "@every 30m"),
			CacheCleanup:  getEnv("CACHE_CLEANUP_SCHEDULE", "@daily"),
			DatabaseCheck: getEnv("DATABASE_CHECK_SCHEDULE", "@hourly"),
			Maintenance:   getEnv("MAINTENANCE_SCHEDULE", "@weekly"),
		},
		Backup:     loadBackupConfig(),
		WarmupCoin: utils.ParseIDList(getEnv("WARMUP_CRYPTOS", "bitcoin,ethereum")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.EquityTimeout <= 0 {
		return fmt.Errorf("EQUITY_TIMEOUT must be positive")
	}
	if c.Backup != nil && c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("BACKUP_BUCKET is required when backups are enabled")
	}
	if c.Backup != nil && c.Backup.RetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// loadBackupConfig loads backup configuration; backups are off unless explicitly enabled
func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("BACKUP_PREFIX", "hindsight"),
		Schedule:        getEnv("BACKUP_SCHEDULE", "@daily"),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
}
