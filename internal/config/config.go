package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           int
	LogLevel       string
	DevMode        bool
	TickerListPath string

	// Upstream base URLs. Overridable mainly so tests can point the
	// clients at local servers.
	NSEBaseURL      string
	YahooBaseURL    string
	ScreenerBaseURL string

	// ExpectedGrowth is the assumed annual earnings growth used by the
	// valuation route.
	ExpectedGrowth float64

	// SearchLimit caps autocomplete results.
	SearchLimit int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 5000),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		TickerListPath:  getEnv("TICKER_LIST_PATH", "./nse_list.txt"),
		NSEBaseURL:      getEnv("NSE_BASE_URL", "https://www.nseindia.com"),
		YahooBaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		ScreenerBaseURL: getEnv("SCREENER_BASE_URL", "https://www.screener.in"),
		ExpectedGrowth:  getEnvAsFloat("EXPECTED_GROWTH", 0.10),
		SearchLimit:     getEnvAsInt("SEARCH_LIMIT", 25),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be a valid port number, got %d", c.Port)
	}

	if c.ExpectedGrowth <= -1 || c.ExpectedGrowth > 1 {
		return fmt.Errorf("EXPECTED_GROWTH must be in (-1, 1], got %v", c.ExpectedGrowth)
	}

	if c.SearchLimit <= 0 {
		return fmt.Errorf("SEARCH_LIMIT must be positive, got %d", c.SearchLimit)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
