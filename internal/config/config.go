// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	cperrors "car-price/internal/errors"
	"car-price/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Artifacts locates the model, vocabularies and dataset
	Artifacts ArtifactsConfig `json:"artifacts"`

	// Audit contains prediction audit configuration
	Audit AuditConfig `json:"audit"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// UIPath serves static files from this directory when set
	UIPath string `json:"ui_path,omitempty"`

	// ReadTimeoutSeconds bounds reading a request
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing a response
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`

	// DatasetPageLimit caps rows returned per dataset page
	DatasetPageLimit int `json:"dataset_page_limit"`
}

// ArtifactsConfig contains artifact loading settings
type ArtifactsConfig struct {
	// Manifest is the path to the HCL artifact manifest
	Manifest string `json:"manifest"`

	// PredictTimeoutMillis bounds each model call, 0 disables the guard
	PredictTimeoutMillis int `json:"predict_timeout_millis"`
}

// AuditConfig contains prediction audit settings
type AuditConfig struct {
	// Enabled turns auditing on
	Enabled bool `json:"enabled"`

	// DSN is a PostgreSQL connection string. Empty logs audits through zap.
	DSN string `json:"dsn,omitempty"`
}

// PredictTimeout returns the model call bound
func (a ArtifactsConfig) PredictTimeout() time.Duration {
	return time.Duration(a.PredictTimeoutMillis) * time.Millisecond
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
			DatasetPageLimit:    500,
		},
		Artifacts: ArtifactsConfig{
			Manifest:             "data/manifest.hcl",
			PredictTimeoutMillis: 2000,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the per-user configuration file path
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".car-price.json")
}

// Load loads configuration from a file and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, cperrors.Config("invalid config file "+path, err)
		}
	case !os.IsNotExist(err):
		return nil, cperrors.Config("failed to read config file "+path, err)
	}

	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides settings from CARPRICE_* environment variables
func (c *Config) ApplyEnv() {
	v := viper.New()
	v.SetEnvPrefix("carprice")
	_ = v.BindEnv("addr")
	_ = v.BindEnv("manifest")
	_ = v.BindEnv("log_level")
	_ = v.BindEnv("log_format")
	_ = v.BindEnv("audit_dsn")
	_ = v.BindEnv("predict_timeout_millis")

	if v.IsSet("addr") {
		c.Server.Addr = v.GetString("addr")
	}
	if v.IsSet("manifest") {
		c.Artifacts.Manifest = v.GetString("manifest")
	}
	if v.IsSet("log_level") {
		c.Logging.Level = v.GetString("log_level")
	}
	if v.IsSet("log_format") {
		c.Logging.Format = v.GetString("log_format")
	}
	if v.IsSet("audit_dsn") {
		c.Audit.DSN = v.GetString("audit_dsn")
		c.Audit.Enabled = true
	}
	if v.IsSet("predict_timeout_millis") {
		c.Artifacts.PredictTimeoutMillis = v.GetInt("predict_timeout_millis")
	}
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
