// Package config provides configuration management for the Longball application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set environment variable prefix
	v.SetEnvPrefix("LONGBALL")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, so a run can start from environment variables and flags alone.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix("LONGBALL")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand environment variables in the configuration (${VAR} syntax)
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "longball")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("data.fetch_timeout_seconds", 60)
	v.SetDefault("data.fetch_retries", 3)
	v.SetDefault("data.cache_ttl_seconds", 300)
	v.SetDefault("data.max_body_bytes", 512<<20)
	v.SetDefault("data.rate_per_second", 2.0)

	v.SetDefault("pipeline.label_column", "hr_outcome")
	v.SetDefault("pipeline.validation_fraction", 0.2)
	v.SetDefault("pipeline.correlation_threshold", 0.97)
	v.SetDefault("pipeline.seed", 42)
	v.SetDefault("pipeline.exclude_columns", []string{
		"game_date", "batter_id", "player_name", "pitcher_id", "city", "park", "roof_status",
	})
	v.SetDefault("pipeline.debug_players", []string{
		"Agustin Ramirez", "Matt Wallner", "Trenton Brooks",
	})

	v.SetDefault("overlay.wind_threshold_mph", 10.0)
	v.SetDefault("overlay.wind_out_factor", 1.08)
	v.SetDefault("overlay.wind_in_factor", 0.93)
	v.SetDefault("overlay.temp_factor_per_10f", 1.03)
	v.SetDefault("overlay.humidity_high_cut", 60.0)
	v.SetDefault("overlay.humidity_high_factor", 1.02)
	v.SetDefault("overlay.humidity_low_cut", 40.0)
	v.SetDefault("overlay.humidity_low_factor", 0.98)
	v.SetDefault("overlay.park_factor_min", 0.85)
	v.SetDefault("overlay.park_factor_max", 1.20)

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.top_n", 30)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

// ReloadFromEnv reloads the configuration from the path named by
// LONGBALL_CONFIG_PATH, when set.
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("LONGBALL_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
