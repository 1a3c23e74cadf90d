// Package config provides configuration management for the ZIP-to-Markdown
// service. It supports environment variable-based configuration with
// validation and default values for all service components including server,
// upload, rate limiting, security, and logging settings.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// MinPortNumber is the minimum valid port number.
	MinPortNumber = 1
	// MaxPortNumber is the maximum valid port number.
	MaxPortNumber = 65535
)

// Config represents the complete configuration for the service,
// aggregating all component-specific configurations.
type Config struct {
	// Server contains HTTP server configuration including ports and timeouts.
	Server ServerConfig `envconfig:"SERVER"`
	// Upload contains archive upload and session lifetime settings.
	Upload UploadConfig `envconfig:"UPLOAD"`
	// RateLimit contains sliding-window rate limiter settings.
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	// Security contains CORS and proxy trust settings.
	Security SecurityConfig `envconfig:"SECURITY"`
	// Logging contains logging configuration.
	Logging LoggingConfig `envconfig:"LOGGING"`
}

// ServerConfig holds HTTP server configuration including network settings
// and timeouts.
type ServerConfig struct {
	// Port is the HTTP server listening port.
	Port int `envconfig:"PORT"             default:"8080"`
	// Host is the network interface to bind to.
	Host string `envconfig:"HOST"             default:"0.0.0.0"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT"     default:"30s"`
	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT"    default:"30s"`
	// IdleTimeout is the maximum amount of time to wait for keep-alive connections.
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT"     default:"60s"`
	// ShutdownTimeout is the maximum time to wait for graceful server shutdown.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// UploadConfig holds archive upload limits and session lifetime settings.
type UploadConfig struct {
	// MaxArchiveBytes is the maximum accepted archive size in bytes.
	MaxArchiveBytes int64 `envconfig:"MAX_ARCHIVE_BYTES" default:"10485760"`
	// SessionTTL is how long an uploaded archive stays retrievable.
	SessionTTL time.Duration `envconfig:"SESSION_TTL"       default:"10m"`
}

// RateLimitConfig holds sliding-window rate limiter settings. Quotas are
// tracked per client key and per operation category.
type RateLimitConfig struct {
	// Window is the trailing interval over which requests are counted.
	Window time.Duration `envconfig:"WINDOW"           default:"1m"`
	// ListMax is the maximum list requests per client within the window.
	ListMax int `envconfig:"LIST_MAX"         default:"30"`
	// GenerateMax is the maximum generate requests per client within the window.
	GenerateMax int `envconfig:"GENERATE_MAX"     default:"60"`
	// CleanupInterval bounds how often idle client keys are scanned out.
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"5m"`
}

// SecurityConfig contains security-related settings including
// CORS configuration and trusted proxies.
type SecurityConfig struct {
	// AllowedOrigins are the CORS allowed origins.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"   default:"*"`
	// AllowedMethods are the CORS allowed HTTP methods.
	AllowedMethods []string `envconfig:"ALLOWED_METHODS"   default:"GET,POST,OPTIONS"`
	// AllowedHeaders are the CORS allowed headers.
	AllowedHeaders []string `envconfig:"ALLOWED_HEADERS"   default:"*"`
	// ExposedHeaders are the CORS exposed headers.
	ExposedHeaders []string `envconfig:"EXPOSED_HEADERS"   default:"Content-Disposition"`
	// AllowCredentials determines if CORS allows credentials.
	AllowCredentials bool `envconfig:"ALLOW_CREDENTIALS" default:"false"`
	// MaxAge is the CORS preflight cache duration in seconds.
	MaxAge int `envconfig:"MAX_AGE"           default:"86400"`
}

// LoggingConfig contains logging configuration including
// log level, format, and output destination.
type LoggingConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `envconfig:"LEVEL"  default:"info"`
	// Format is the log output format (json, text).
	Format string `envconfig:"FORMAT" default:"json"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `envconfig:"OUTPUT" default:"stdout"`
}

// Load reads configuration from environment variables and returns
// a validated Config instance. It returns an error if configuration
// is invalid.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate performs validation of all configuration values, ensuring they
// meet operational requirements.
func (c *Config) Validate() error {
	if c.Server.Port < MinPortNumber || c.Server.Port > MaxPortNumber {
		return errors.New("server port must be between 1 and 65535")
	}

	if c.Upload.MaxArchiveBytes <= 0 {
		return errors.New("maximum archive size must be positive")
	}

	if c.Upload.SessionTTL < time.Second {
		return errors.New("session TTL must be at least 1 second")
	}

	if c.RateLimit.Window < time.Second {
		return errors.New("rate limit window must be at least 1 second")
	}

	if c.RateLimit.ListMax < 1 || c.RateLimit.GenerateMax < 1 {
		return errors.New("rate limit quotas must be at least 1")
	}

	if c.RateLimit.CleanupInterval < c.RateLimit.Window {
		return errors.New("rate limit cleanup interval must not be shorter than the window")
	}

	return nil
}

// ServerAddr returns the formatted server address string in host:port format.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
