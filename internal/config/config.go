package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	LogLevel     string
	DevMode      bool
	DataDir      string // static offline datasets (one file per symbol)
	DataCacheDir string // online fetch cache
	DatabasePath string // resolution history database

	// Lookback window for online fetches, anchored at the processing date.
	LookbackYears int

	// Prefetch job settings
	PrefetchSymbols  []string
	PrefetchSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("GO_PORT", 8010),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		DataDir:          getEnv("DATA_DIR", "./data/market_data"),
		DataCacheDir:     getEnv("DATA_CACHE_DIR", "./data/data_cache"),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/resolutions.db"),
		LookbackYears:    getEnvAsInt("LOOKBACK_YEARS", 15),
		PrefetchSymbols:  getEnvAsList("PREFETCH_SYMBOLS"),
		PrefetchSchedule: getEnv("PREFETCH_SCHEDULE", "0 0 7 * * MON-FRI"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DataCacheDir == "" {
		return fmt.Errorf("DATA_CACHE_DIR is required")
	}
	if c.LookbackYears <= 0 {
		return fmt.Errorf("LOOKBACK_YEARS must be positive, got %d", c.LookbackYears)
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

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
