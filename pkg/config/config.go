package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for igmenu
type Config struct {
	// Instagram client settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	AppID     string        `yaml:"app_id" json:"app_id"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	// BaseDirectory is the root of the data tree. Empty means a "data"
	// directory next to the executable.
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	NoColor       bool   `yaml:"no_color" json:"no_color"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Flag keys understood by MergeCommandLineFlags
const (
	FlagLogLevel = "log-level"
	FlagDataDir  = "data-dir"
	FlagNoColor  = "no-color"
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			AppID:     "936619743392459",
			Timeout:   30 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: "",
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if userAgent := os.Getenv("IGMENU_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}
	if appID := os.Getenv("IGMENU_APP_ID"); appID != "" {
		c.Instagram.AppID = appID
	}
	if timeout := os.Getenv("IGMENU_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid IGMENU_TIMEOUT: %w", err)
		}
		c.Instagram.Timeout = d
	}

	if dataDir := os.Getenv("IGMENU_DATA_DIR"); dataDir != "" {
		c.Output.BaseDirectory = dataDir
	}
	if noColor := os.Getenv("IGMENU_NO_COLOR"); noColor != "" {
		c.Output.NoColor = strings.ToLower(noColor) == "true"
	}

	if logLevel := os.Getenv("IGMENU_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("IGMENU_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igmenu.yaml",
		".igmenu.yml",
		filepath.Join(home, ".config", "igmenu", "config.yaml"),
		filepath.Join(home, ".config", "igmenu", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Instagram.AppID == "" {
		errs = append(errs, errors.New("instagram app id is required"))
	}
	if c.Instagram.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// DataDirectory returns the absolute root of the data tree
func (c *Config) DataDirectory() (string, error) {
	if c.Output.BaseDirectory != "" {
		return filepath.Abs(c.Output.BaseDirectory)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}

	return filepath.Join(filepath.Dir(exe), "data"), nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if logLevel, ok := flags[FlagLogLevel].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if dataDir, ok := flags[FlagDataDir].(string); ok && dataDir != "" {
		c.Output.BaseDirectory = dataDir
	}
	if noColor, ok := flags[FlagNoColor].(bool); ok && noColor {
		c.Output.NoColor = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igmenu.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
