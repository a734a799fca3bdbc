// Package config provides configuration management for the Overtake Analyser application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is used when no path is supplied
	DefaultConfigPath = "config/config.yaml"
	envPrefix         = "OVERTAKE"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	SetDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// SetDefaults registers the default value of every optional key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "overtake-analyser")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("simulation.car_performance", 1.0)
	v.SetDefault("simulation.track_difficulty", 0.5)
	v.SetDefault("simulation.driver_aggressiveness", 0.7)
	v.SetDefault("simulation.driver_defensiveness", 0.6)
	v.SetDefault("simulation.weather_condition", 1.0)
	v.SetDefault("simulation.simulations", 1000)
	v.SetDefault("simulation.sections", 10)
	v.SetDefault("simulation.overtake_zones", []float64{0.2, 0.8})
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 600)
	v.SetDefault("cache.max_size", 1000)

	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.rate_limit_rps", 20)

	v.SetDefault("publisher.enabled", false)
	v.SetDefault("publisher.timeout_seconds", 10)
	v.SetDefault("publisher.max_retries", 3)
	v.SetDefault("publisher.rate_limit", 5)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("report.output_dir", "./output")
	v.SetDefault("report.precision", 4)
}

// ReloadFromEnv replaces cfg with the file named by OVERTAKE_CONFIG_PATH, if set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
