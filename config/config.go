// Package config provides configuration loading and management for sparqlexport.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults matching the values the export has always used.
const (
	DefaultEndpoint        = "https://data.nobelprize.org/sparql"
	DefaultFormat          = "ntriples"
	DefaultOutputPath      = "nobel_prizes.nt"
	DefaultLocale          = "ru"
	DefaultTimeout         = 60 * time.Second
	DefaultUserAgent       = "sparqlexport/0.1.0"
	DefaultMaxResponseSize = 512 * 1024 * 1024
)

// Config represents the complete sparqlexport configuration
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Query    QueryConfig    `yaml:"query"`
	Format   string         `yaml:"format"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// EndpointConfig configures the remote SPARQL endpoint
type EndpointConfig struct {
	// URL is the SPARQL endpoint (default: https://data.nobelprize.org/sparql)
	URL string `yaml:"url"`
	// Timeout bounds the whole HTTP exchange, body included
	Timeout time.Duration `yaml:"timeout"`
	// UserAgent is sent on every request
	UserAgent string `yaml:"user_agent"`
	// MaxResponseSize caps the buffered response body in bytes
	MaxResponseSize int64 `yaml:"max_response_size"`
}

// QueryConfig replaces the built-in CONSTRUCT query. Text wins over File.
type QueryConfig struct {
	Text string `yaml:"text"`
	File string `yaml:"file"`
}

// OutputConfig configures where and how the dataset is written
type OutputConfig struct {
	// Path is the dataset file, truncated and rewritten on every run
	Path string `yaml:"path"`
	// Locale selects the confirmation message language (ru, en)
	Locale string `yaml:"locale"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig configures Prometheus textfile output
type MetricsConfig struct {
	// Textfile is written after each run when set (empty = disabled)
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:             DefaultEndpoint,
			Timeout:         DefaultTimeout,
			UserAgent:       DefaultUserAgent,
			MaxResponseSize: DefaultMaxResponseSize,
		},
		Format: DefaultFormat,
		Output: OutputConfig{
			Path:   DefaultOutputPath,
			Locale: DefaultLocale,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint.url is required")
	}
	u, err := url.Parse(c.Endpoint.URL)
	if err != nil {
		return fmt.Errorf("endpoint.url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint.url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint.url must include a host")
	}
	if c.Endpoint.Timeout <= 0 {
		return fmt.Errorf("endpoint.timeout must be positive")
	}
	if c.Endpoint.MaxResponseSize < 0 {
		return fmt.Errorf("endpoint.max_response_size must be non-negative")
	}
	if c.Format == "" {
		return fmt.Errorf("format is required")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	switch c.Output.Locale {
	case "ru", "en":
	default:
		return fmt.Errorf("output.locale must be ru or en, got %q", c.Output.Locale)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. ${VAR} and
// ${VAR:-default} references are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	return decodeFile(path, DefaultConfig())
}

// loadLayer parses a YAML file onto an empty Config so that only the keys
// present in the file survive a Merge.
func loadLayer(path string) (*Config, error) {
	return decodeFile(path, &Config{})
}

func decodeFile(path string, config *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Endpoint
	if other.Endpoint.URL != "" {
		c.Endpoint.URL = other.Endpoint.URL
	}
	if other.Endpoint.Timeout != 0 {
		c.Endpoint.Timeout = other.Endpoint.Timeout
	}
	if other.Endpoint.UserAgent != "" {
		c.Endpoint.UserAgent = other.Endpoint.UserAgent
	}
	if other.Endpoint.MaxResponseSize != 0 {
		c.Endpoint.MaxResponseSize = other.Endpoint.MaxResponseSize
	}

	// Query
	if other.Query.Text != "" {
		c.Query.Text = other.Query.Text
		c.Query.File = ""
	} else if other.Query.File != "" {
		c.Query.File = other.Query.File
		c.Query.Text = ""
	}

	if other.Format != "" {
		c.Format = other.Format
	}

	// Output
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}
	if other.Output.Locale != "" {
		c.Output.Locale = other.Output.Locale
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}
