package config

import (
	"os"
	"path/filepath"
	"strconv"

	"genexplorer/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Explore  ExploreConfig
	Metrics  MetricsConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds the locations of the two source tables
type DataConfig struct {
	MuTablePath  string
	PhiTablePath string
	// DataDir receives a synthetic table pair when no paths are configured
	DataDir string
	// WatchSources invalidates cached headers on file change notifications
	WatchSources bool
}

// ExploreConfig holds interactive exploration settings
type ExploreConfig struct {
	GenePageSize int
}

// MetricsConfig holds prometheus settings
type MetricsConfig struct {
	Enabled bool
}

// Synthetic reports whether the server should generate its own tables
func (d DataConfig) Synthetic() bool {
	return d.MuTablePath == "" && d.PhiTablePath == ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Data:     *loadDataConfig(),
		Explore:  *loadExploreConfig(),
		Metrics:  *loadMetricsConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		MuTablePath:  getEnvOrDefault("MU_TABLE_PATH", ""),
		PhiTablePath: getEnvOrDefault("PHI_TABLE_PATH", ""),
		DataDir:      getEnvOrDefault("DATA_DIR", filepath.Join(os.TempDir(), "genexplorer")),
		WatchSources: getEnvBoolOrDefault("WATCH_SOURCES", true),
	}
}

func loadExploreConfig() *ExploreConfig {
	return &ExploreConfig{
		GenePageSize: getEnvIntOrDefault("GENE_PAGE_SIZE", 100),
	}
}

func loadMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if (config.Data.MuTablePath == "") != (config.Data.PhiTablePath == "") {
		return errors.ConfigInvalid("MU_TABLE_PATH and PHI_TABLE_PATH must be set together")
	}
	if config.Explore.GenePageSize <= 0 {
		return errors.ConfigInvalid("GENE_PAGE_SIZE must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
