// Package config provides configuration management for the snapshotter.
// It handles loading, validating, and saving application settings. The package
// supports YAML configuration files and provides sensible defaults while
// allowing customization through a configuration file.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cchdo/snapshotter/pkg/errors"
	"github.com/cchdo/snapshotter/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Catalog settings
	APIBaseURL string `yaml:"api_base_url"`

	// Cache settings
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Output settings
	SnapshotRoot string `yaml:"snapshot_root,omitempty"` // Directory snapshot dirs are created under

	// Network settings
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent_downloads"`

	// Logging settings
	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// Default configuration values.
const (
	// DefaultAPIBaseURL is the catalog the snapshotter archives.
	DefaultAPIBaseURL = "https://cchdo.ucsd.edu"

	// DefaultHTTPTimeout is the default timeout for a single HTTP request.
	DefaultHTTPTimeout = 5 * time.Minute

	// DefaultMaxConcurrent caps simultaneously in-flight file downloads to
	// respect the catalog's capacity.
	DefaultMaxConcurrent = 20
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetDownloadCacheDir()
	if err != nil {
		// Fallback to a relative cache next to the snapshot output
		cacheDir = "snapshotter-cache"
	}

	return &Config{
		Settings: Settings{
			APIBaseURL:    DefaultAPIBaseURL,
			CacheDir:      cacheDir,
			SnapshotRoot:  ".",
			HTTPTimeout:   DefaultHTTPTimeout,
			MaxConcurrent: DefaultMaxConcurrent,
			LogLevel:      "info",
		},
	}
}

// DefaultConfigPath returns the auto-detected config file location.
func DefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine config directory")
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration, not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	if err := fsutil.EnsureFileDir(path); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	if err := os.WriteFile(path, data, fsutil.FileModeSecure); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Settings.APIBaseURL); err != nil {
		return fmt.Errorf("api_base_url is not a valid URL: %s", c.Settings.APIBaseURL)
	}
	if c.Settings.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if c.Settings.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent_downloads must be at least 1")
	}
	switch c.Settings.LogLevel {
	case "error", "warn", "warning", "info", "debug":
	default:
		return fmt.Errorf("invalid log level: %s", c.Settings.LogLevel)
	}
	return nil
}

// applyDefaults fills in zero values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Settings.APIBaseURL == "" {
		c.Settings.APIBaseURL = defaults.Settings.APIBaseURL
	}
	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.SnapshotRoot == "" {
		c.Settings.SnapshotRoot = defaults.Settings.SnapshotRoot
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
