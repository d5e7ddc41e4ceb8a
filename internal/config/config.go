// Package config loads ledger configuration from environment variables,
// an optional .env file, and a YAML policy file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig
	Run        RunConfig
	Validation ValidationConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
	Cache      CacheConfig
	PolicyFile string
}

// DatabaseConfig holds connection strings. Empty values select in-memory stores.
type DatabaseConfig struct {
	PostgresDSN   string
	ClickHouseDSN string
	RedisAddr     string
}

// RunConfig holds pipeline execution settings.
type RunConfig struct {
	Workers        int
	DropFlagged    bool
	BackfillPrices bool
	EmitPriceDays  bool
}

// ValidationConfig holds recurrence tolerances and the freshness window.
type ValidationConfig struct {
	AbsToleranceUSD float64
	RelTolerance    float64
	InflowTolerance float64
	FreshnessDays   int
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// MetricsConfig holds the metrics listener address. Empty disables it.
type MetricsConfig struct {
	Addr string
}

// CacheConfig holds exclusion snapshot cache settings.
type CacheConfig struct {
	ExclusionTTL time.Duration
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			PostgresDSN:   getEnv("POSTGRES_DSN", ""),
			ClickHouseDSN: getEnv("CLICKHOUSE_DSN", ""),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
		},
		Run: RunConfig{
			Workers:        getEnvAsInt("LEDGER_WORKERS", 4),
			DropFlagged:    getEnvAsBool("LEDGER_DROP_FLAGGED", true),
			BackfillPrices: getEnvAsBool("LEDGER_BACKFILL_PRICES", true),
			EmitPriceDays:  getEnvAsBool("LEDGER_EMIT_PRICE_DAYS", false),
		},
		Validation: ValidationConfig{
			AbsToleranceUSD: getEnvAsFloat("LEDGER_ABS_TOLERANCE_USD", 1),
			RelTolerance:    getEnvAsFloat("LEDGER_REL_TOLERANCE", 0.01),
			InflowTolerance: getEnvAsFloat("LEDGER_INFLOW_TOLERANCE", 0.0001),
			FreshnessDays:   getEnvAsInt("LEDGER_FRESHNESS_DAYS", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		Cache: CacheConfig{
			ExclusionTTL: getEnvAsDuration("EXCLUSION_CACHE_TTL", time.Hour),
		},
		PolicyFile: getEnv("LEDGER_POLICY_FILE", "policy.yaml"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Run.Workers < 1 {
		return fmt.Errorf("LEDGER_WORKERS must be positive, got %d", c.Run.Workers)
	}
	if c.Validation.FreshnessDays < 0 {
		return fmt.Errorf("LEDGER_FRESHNESS_DAYS must not be negative, got %d", c.Validation.FreshnessDays)
	}
	if c.Validation.AbsToleranceUSD < 0 || c.Validation.RelTolerance < 0 || c.Validation.InflowTolerance < 0 {
		return fmt.Errorf("validation tolerances must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}
