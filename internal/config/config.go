// Package config provides configuration management for the Longball application.
package config

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Data     DataConfig     `mapstructure:"data" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Overlay  OverlayConfig  `mapstructure:"overlay" validate:"required"`
	Output   OutputConfig   `mapstructure:"output" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig locates the two input tables. Paths may be local files or
// http(s) URLs, in CSV or parquet format.
type DataConfig struct {
	EventPath      string `mapstructure:"event_path" validate:"required"`
	TodayPath      string `mapstructure:"today_path" validate:"required"`
	FetchTimeout   int    `mapstructure:"fetch_timeout_seconds" validate:"required,gt=0"`
	FetchRetries   int    `mapstructure:"fetch_retries" validate:"gte=0"`
	CacheTTL       int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	MaxBodyBytes   int64  `mapstructure:"max_body_bytes" validate:"gt=0"`
	RatePerSecond  float64 `mapstructure:"rate_per_second" validate:"gt=0"`
}

// PipelineConfig represents training pipeline configuration
type PipelineConfig struct {
	LabelColumn          string   `mapstructure:"label_column" validate:"required"`
	ValidationFraction   float64  `mapstructure:"validation_fraction" validate:"required,gt=0,lt=1"`
	CorrelationThreshold float64  `mapstructure:"correlation_threshold" validate:"required,gt=0,lte=1"`
	Seed                 int64    `mapstructure:"seed"`
	ExcludeColumns       []string `mapstructure:"exclude_columns"`
	DebugPlayers         []string `mapstructure:"debug_players"`
}

// OverlayConfig represents the weather and park adjustment parameters
type OverlayConfig struct {
	WindThresholdMPH float64 `mapstructure:"wind_threshold_mph" validate:"required,gt=0"`
	WindOutFactor    float64 `mapstructure:"wind_out_factor" validate:"required,gt=0"`
	WindInFactor     float64 `mapstructure:"wind_in_factor" validate:"required,gt=0"`
	TempFactorPer10F float64 `mapstructure:"temp_factor_per_10f" validate:"required,gt=0"`
	HumidityHighCut  float64 `mapstructure:"humidity_high_cut" validate:"required,gt=0"`
	HumidityHighFac  float64 `mapstructure:"humidity_high_factor" validate:"required,gt=0"`
	HumidityLowCut   float64 `mapstructure:"humidity_low_cut" validate:"required,gt=0"`
	HumidityLowFac   float64 `mapstructure:"humidity_low_factor" validate:"required,gt=0"`
	ParkFactorMin    float64 `mapstructure:"park_factor_min" validate:"required,gt=0"`
	ParkFactorMax    float64 `mapstructure:"park_factor_max" validate:"required,gt=0"`
}

// OutputConfig represents leaderboard and export configuration
type OutputConfig struct {
	Dir  string `mapstructure:"dir" validate:"required"`
	TopN int    `mapstructure:"top_n" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
