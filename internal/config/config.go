// Package config provides configuration management for the Overtake Analyser application.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Server     ServerConfig     `mapstructure:"server"`
	Publisher  PublisherConfig  `mapstructure:"publisher"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Report     ReportConfig     `mapstructure:"report"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SimulationConfig holds the default model parameters for every analysis.
// Ranges on the model parameters are documented, not enforced.
type SimulationConfig struct {
	CarPerformance       float64   `mapstructure:"car_performance"`
	TrackDifficulty      float64   `mapstructure:"track_difficulty"`
	DriverAggressiveness float64   `mapstructure:"driver_aggressiveness"`
	DriverDefensiveness  float64   `mapstructure:"driver_defensiveness"`
	WeatherCondition     float64   `mapstructure:"weather_condition"`
	Simulations          int       `mapstructure:"simulations" validate:"gt=0"`
	Sections             int       `mapstructure:"sections" validate:"gt=0"`
	OvertakeZones        []float64 `mapstructure:"overtake_zones" validate:"dive,gte=0,lt=1"`
	Seed                 int64     `mapstructure:"seed"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// CacheConfig configures the in-memory result cache
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"omitempty,gt=0"`
	MaxSize    int  `mapstructure:"max_size" validate:"omitempty,gt=0"`
}

// ServerConfig configures the HTTP, gRPC and health listeners
type ServerConfig struct {
	HTTPPort           int     `mapstructure:"http_port" validate:"required,min=1,max=65535"`
	GRPCPort           int     `mapstructure:"grpc_port" validate:"omitempty,min=1,max=65535"`
	HealthPort         int     `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
	ReadTimeoutSeconds int     `mapstructure:"read_timeout_seconds" validate:"omitempty,gt=0"`
	RateLimitRPS       float64 `mapstructure:"rate_limit_rps" validate:"gte=0"`
}

// PublisherConfig configures the result webhook
type PublisherConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	URL            string  `mapstructure:"url" validate:"omitempty,url"`
	Token          string  `mapstructure:"token"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// ScheduleConfig lists the scenarios re-analysed on a cron schedule
type ScheduleConfig struct {
	Enabled   bool             `mapstructure:"enabled"`
	Scenarios []ScenarioConfig `mapstructure:"scenarios" validate:"dive"`
}

// ScenarioConfig is a named set of parameter overrides run on a cron expression.
type ScenarioConfig struct {
	Name      string                 `mapstructure:"name"`
	Cron      string                 `mapstructure:"cron" validate:"required,cronspec"`
	Label     string                 `mapstructure:"label"`
	Overrides map[string]interface{} `mapstructure:"overrides"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ReportConfig configures file exports
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Precision int32  `mapstructure:"precision" validate:"gte=0,lte=10"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// CacheTTL returns the cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
