// Package main provides the overtake command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/overtake-analyser/internal/config"
	"github.com/yourusername/overtake-analyser/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logLevel   string
	cfg        *config.Config
	appLog     *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:          "overtake",
	Short:        "Estimate overtaking probabilities around a race track",
	Long:         `Runs Monte Carlo overtaking simulations per track section, stores and publishes the results, and serves them over HTTP and gRPC.`,
	Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(analyseCmd, simulateCmd, sweepCmd, compareCmd, historyCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}

	// Load AWS secrets if enabled
	secretsLoaded := false
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		secretsCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := config.LoadSecretsFromAWS(secretsCtx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
		secretsLoaded = true
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLoggerWithOutput(cfg.App.LogLevel, os.Stderr)
	logger.NewAuditLogger(appLog).LogConfigurationLoaded(configFile, cfg.App.Environment, secretsLoaded)
	return nil
}
