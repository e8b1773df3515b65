package config

import (
	"os"
	"strconv"
	"strings"

	"neuromorph/adapters/stats/engine"
	"neuromorph/domain/comparison"
	"neuromorph/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Stats    StatsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver string
	URL    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// StatsConfig holds the comparison engine defaults
type StatsConfig struct {
	Alpha           float64
	NormalityMethod comparison.NormalityMethod
	EqualVariance   bool
	Workers         int
}

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultSQLitePath = "neuromorph.db"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
			URL:    getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Stats: StatsConfig{
			Alpha:           getEnvFloatOrDefault("STATS_ALPHA", 0.05),
			NormalityMethod: comparison.NormalityMethod(strings.ToLower(getEnvOrDefault("STATS_NORMALITY_TEST", string(comparison.NormalityShapiro)))),
			EqualVariance:   getEnvBoolOrDefault("STATS_EQUAL_VAR", true),
			Workers:         getEnvIntOrDefault("STATS_WORKERS", 4),
		},
	}

	if config.Database.URL == "" && config.Database.Driver == DriverSQLite {
		config.Database.URL = defaultSQLitePath
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// EngineConfig converts the stats settings to engine configuration
func (c StatsConfig) EngineConfig() engine.Config {
	return engine.Config{
		Alpha:           c.Alpha,
		NormalityMethod: c.NormalityMethod,
		EqualVariance:   c.EqualVariance,
	}
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be sqlite3 or postgres, got " + config.Database.Driver)
	}
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required for postgres")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test, got " + config.Server.GinMode)
	}
	if config.Stats.Workers < 1 {
		return errors.ConfigInvalid("STATS_WORKERS must be at least 1")
	}
	if err := config.Stats.EngineConfig().Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
