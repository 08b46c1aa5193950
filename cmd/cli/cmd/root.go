// Package cmd provides the CLI commands for car-price.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"car-price/core/artifacts"
	"car-price/internal/config"
	"car-price/internal/logging"
	"car-price/internal/server"
)

var (
	cfgFile      string
	verbose      bool
	manifestPath string

	appConfig = config.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "car-price",
	Short: "Predict used car sale prices",
	Long: `car-price predicts the sale price of a used car from its model, region,
brand, transmission, fuel, mileage, engine capacity and production year.

It serves the prediction page and its dataset charts over HTTP, and can
predict a single price from the command line.

Examples:
  car-price serve --addr :8080
  car-price predict --model Avanza --region Jakarta --brand Toyota \
    --transmission manual --fuel diesel --mileage 50 --engine 1.5 --year 2018
  car-price vocab brand`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.car-price.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "artifact manifest (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func initConfig() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if manifestPath != "" {
		cfg.Artifacts.Manifest = manifestPath
	}
	appConfig = cfg

	// Initialize logging
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	if err := logging.Initialize(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// loadBundle loads the configured artifacts
func loadBundle(ctx context.Context) (*artifacts.Bundle, error) {
	opts := artifacts.Options{PredictTimeout: appConfig.Artifacts.PredictTimeout()}
	return artifacts.LoadFile(ctx, appConfig.Artifacts.Manifest, opts)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "car-price version %s\n", server.Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configForce bool

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(appConfig, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := config.Default().Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
}
