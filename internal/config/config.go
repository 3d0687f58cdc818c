// Package config reads engine configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	ModelPath    string
	LogLevel     string
	Port         int
	DevMode      bool

	// Rebalancing parameters
	RebalanceSchedule string  // cron expression for the weekly cycle
	TargetVolatility  float64 // LowRisk annualized volatility target
	ModelWindowSize   int     // LowTurnover feature window length
	HighYieldDays     int     // HighYield trailing lookback in days
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:      getEnv("DATABASE_PATH", "./data/fund.db"),
		ModelPath:         getEnv("MODEL_PATH", "./data/model.bin"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnvAsInt("PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		RebalanceSchedule: getEnv("REBALANCE_SCHEDULE", "0 0 18 * * FRI"),
		TargetVolatility:  getEnvAsFloat("TARGET_VOLATILITY", 0.10),
		ModelWindowSize:   getEnvAsInt("MODEL_WINDOW_SIZE", 10),
		HighYieldDays:     getEnvAsInt("HIGH_YIELD_DAYS", 14),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}
	if c.TargetVolatility <= 0 {
		return fmt.Errorf("TARGET_VOLATILITY must be positive, got %f", c.TargetVolatility)
	}
	if c.ModelWindowSize < 1 {
		return fmt.Errorf("MODEL_WINDOW_SIZE must be at least 1, got %d", c.ModelWindowSize)
	}
	if c.HighYieldDays < 1 {
		return fmt.Errorf("HIGH_YIELD_DAYS must be at least 1, got %d", c.HighYieldDays)
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
