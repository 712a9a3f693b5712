// Package config provides configuration management for the controller server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultAllowedOrigins  = "*"
	DefaultTodoStartID     = 1000
	DefaultTMDBBaseURL     = "https://api.themoviedb.org/3/"
	DefaultTMDBLanguage    = "en-US"
	DefaultTMDBTimeout     = 10 * time.Second
	DefaultTMDBCacheTTL    = 5 * time.Minute
)

// Environment variable names.
const (
	EnvConfigFile      = "APP_CONFIG_FILE"
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvAllowedOrigins  = "APP_ALLOWED_ORIGINS"
	EnvDevToolsURL     = "APP_DEVTOOLS_URL"
	EnvTodoStartID     = "APP_TODO_START_ID"
	EnvTodoStrict      = "APP_TODO_STRICT"
	EnvTMDBBaseURL     = "APP_TMDB_BASE_URL"
	EnvTMDBAPIKey      = "APP_TMDB_API_KEY" //nolint:gosec // env var name, not a credential
	EnvTMDBLanguage    = "APP_TMDB_LANGUAGE"
	EnvTMDBTimeout     = "APP_TMDB_TIMEOUT"
	EnvTMDBCacheTTL    = "APP_TMDB_CACHE_TTL"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int           `yaml:"server_port"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`

	// DevToolsURL is handed to the shell by the showdevtools command.
	DevToolsURL string `yaml:"devtools_url"`

	// To-do list settings.
	TodoStartID int  `yaml:"todo_start_id"`
	TodoStrict  bool `yaml:"todo_strict"`

	// TMDB proxy settings.
	TMDBBaseURL  string        `yaml:"tmdb_base_url"`
	TMDBAPIKey   string        `yaml:"tmdb_api_key"`
	TMDBLanguage string        `yaml:"tmdb_language"`
	TMDBTimeout  time.Duration `yaml:"tmdb_timeout"`
	TMDBCacheTTL time.Duration `yaml:"tmdb_cache_ttl"`
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidTodoStartID     = errors.New("todo start id must be positive")
	ErrInvalidTMDBBaseURL     = errors.New("TMDB base URL must start with http:// or https://")
	ErrInvalidTMDBTimeout     = errors.New("TMDB timeout must be positive")
	ErrInvalidTMDBCacheTTL    = errors.New("TMDB cache TTL cannot be negative")
)

// Load reads configuration from an optional YAML file and environment
// variables, with defaults. Environment variables have priority over the
// file, and the file over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		AllowedOrigins:  []string{DefaultAllowedOrigins},
		TodoStartID:     DefaultTodoStartID,
		TMDBBaseURL:     DefaultTMDBBaseURL,
		TMDBLanguage:    DefaultTMDBLanguage,
		TMDBTimeout:     DefaultTMDBTimeout,
		TMDBCacheTTL:    DefaultTMDBCacheTTL,
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the values present in a YAML file.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	if err := c.loadTodoEnv(); err != nil {
		return err
	}

	if err := c.loadTMDBEnv(); err != nil {
		return err
	}

	return nil
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvAllowedOrigins); val != "" {
		c.AllowedOrigins = splitList(val)
	}

	if val := os.Getenv(EnvDevToolsURL); val != "" {
		c.DevToolsURL = val
	}

	return nil
}

// loadTodoEnv loads to-do list environment variables.
func (c *Config) loadTodoEnv() error {
	if val := os.Getenv(EnvTodoStartID); val != "" {
		id, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTodoStartID, err)
		}
		c.TodoStartID = id
	}

	if val := os.Getenv(EnvTodoStrict); val != "" {
		strict, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTodoStrict, err)
		}
		c.TodoStrict = strict
	}

	return nil
}

// loadTMDBEnv loads TMDB proxy environment variables.
func (c *Config) loadTMDBEnv() error {
	if val := os.Getenv(EnvTMDBBaseURL); val != "" {
		c.TMDBBaseURL = val
	}

	if val := os.Getenv(EnvTMDBAPIKey); val != "" {
		c.TMDBAPIKey = val
	}

	if val := os.Getenv(EnvTMDBLanguage); val != "" {
		c.TMDBLanguage = val
	}

	if val := os.Getenv(EnvTMDBTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTMDBTimeout, err)
		}
		c.TMDBTimeout = timeout
	}

	if val := os.Getenv(EnvTMDBCacheTTL); val != "" {
		ttl, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTMDBCacheTTL, err)
		}
		c.TMDBCacheTTL = ttl
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if c.TodoStartID < 1 {
		return ErrInvalidTodoStartID
	}

	if err := c.validateTMDB(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateTMDB validates the TMDB proxy configuration.
func (c *Config) validateTMDB() error {
	if !strings.HasPrefix(c.TMDBBaseURL, "http://") && !strings.HasPrefix(c.TMDBBaseURL, "https://") {
		return ErrInvalidTMDBBaseURL
	}

	if c.TMDBTimeout <= 0 {
		return ErrInvalidTMDBTimeout
	}

	if c.TMDBCacheTTL < 0 {
		return ErrInvalidTMDBCacheTTL
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
