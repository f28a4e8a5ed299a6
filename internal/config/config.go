package config

import (
	"os"
	"strconv"
	"time"

	"saevis/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Chart  ChartConfig
	Demo   DemoConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// EngineConfig holds threshold-engine settings
type EngineConfig struct {
	// DebounceDelay is how long a burst of threshold edits must settle
	// before one downstream refresh fires.
	DebounceDelay time.Duration

	// Default threshold values for the global layer.
	DefaultFeatureSplitting float64
	DefaultSemDistMean      float64
	DefaultScore            float64

	// HistogramBins is the bin count requested from the data provider.
	HistogramBins int
}

// ChartConfig holds layout geometry settings
type ChartConfig struct {
	HistogramWidth  float64
	HistogramHeight float64
	FlowWidth       float64
	FlowHeight      float64
	PanelMargin     float64
}

// DemoConfig holds synthetic data source settings
type DemoConfig struct {
	Seed         int64
	FeatureCount int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Engine: EngineConfig{
			DebounceDelay:           getEnvDurationOrDefault("DEBOUNCE_DELAY", 300*time.Millisecond),
			DefaultFeatureSplitting: getEnvFloatOrDefault("DEFAULT_FEATURE_SPLITTING", 0.5),
			DefaultSemDistMean:      getEnvFloatOrDefault("DEFAULT_SEMDIST_MEAN", 0.10),
			DefaultScore:            getEnvFloatOrDefault("DEFAULT_SCORE", 0.5),
			HistogramBins:           getEnvIntOrDefault("HISTOGRAM_BINS", 40),
		},
		Chart: ChartConfig{
			HistogramWidth:  getEnvFloatOrDefault("HISTOGRAM_WIDTH", 420),
			HistogramHeight: getEnvFloatOrDefault("HISTOGRAM_HEIGHT", 160),
			FlowWidth:       getEnvFloatOrDefault("FLOW_WIDTH", 960),
			FlowHeight:      getEnvFloatOrDefault("FLOW_HEIGHT", 540),
			PanelMargin:     getEnvFloatOrDefault("PANEL_MARGIN", 12),
		},
		Demo: DemoConfig{
			Seed:         int64(getEnvIntOrDefault("DEMO_SEED", 42)),
			FeatureCount: getEnvIntOrDefault("DEMO_FEATURES", 8000),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Engine.DebounceDelay <= 0 {
		return errors.ConfigInvalid("debounce delay must be positive")
	}
	if config.Engine.HistogramBins < 1 {
		return errors.ConfigInvalid("histogram bin count must be at least 1")
	}
	if config.Demo.FeatureCount < 1 {
		return errors.ConfigInvalid("demo feature count must be at least 1")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
