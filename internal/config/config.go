package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the Teamwork MCP server configuration
type Config struct {
	// Server contains the MCP server identity and listener settings.
	Server struct {
		// Name is the server name announced during MCP initialization.
		Name string `json:"name" env:"SERVER_NAME" validate:"required"`

		// Version is the server version announced during MCP initialization.
		Version string `json:"version" env:"SERVER_VERSION"`

		// Port is the HTTP listen port for the MCP and health endpoints.
		Port int `json:"port" env:"PORT" validate:"min:1"`
	} `json:"server"`

	// Teamwork contains fallbacks for gateway-supplied credentials.
	Teamwork struct {
		// Domain is the Teamwork installation domain used when the
		// X-Teamwork-Domain header is absent (e.g. "example.teamwork.com").
		Domain string `json:"domain" env:"DOMAIN"`

		// AccessToken is a fallback OAuth token used when no Authorization
		// header is forwarded. Intended for local development only.
		AccessToken string `json:"access_token" env:"ACCESS_TOKEN"`

		// RequestTimeoutSeconds bounds individual Teamwork API requests.
		RequestTimeoutSeconds int `json:"request_timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS" validate:"min:1"`
	} `json:"teamwork"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".teamworkmcpconfig"
	DefaultServerName     = "teamwork-mcp"
	DefaultServerVersion  = "1.0.0"
	DefaultPort           = 3005
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Server.Name = DefaultServerName
	config.Server.Version = DefaultServerVersion
	config.Server.Port = DefaultPort
	config.Teamwork.RequestTimeoutSeconds = DefaultTimeoutSeconds
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Create a default logger for configuration loading
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create default configuration
	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// File doesn't exist, return default config with env overrides
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		applyGatewayEnv(cfg)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	// Create configurator instance
	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("TEAMWORKMCP")).
		WithValidator(configurator.NewDefaultValidator())

	// Load configuration
	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	applyGatewayEnv(cfg)

	// Store the config path for future operations
	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// applyGatewayEnv applies the unprefixed environment variables the upstream
// gateway conventionally sets (TEAMWORK_DOMAIN, TEAMWORK_ACCESS_TOKEN). They
// only fill fields left empty, so file values and TEAMWORKMCP_* overrides
// both win over them.
func applyGatewayEnv(cfg *Config) {
	if cfg.Teamwork.Domain == "" {
		cfg.Teamwork.Domain = os.Getenv("TEAMWORK_DOMAIN")
	}
	if cfg.Teamwork.AccessToken == "" {
		cfg.Teamwork.AccessToken = os.Getenv("TEAMWORK_ACCESS_TOKEN")
	}
}

// RequestTimeout returns the configured Teamwork API request timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Teamwork.RequestTimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Teamwork.RequestTimeoutSeconds) * time.Second
}

// ListenAddr returns the HTTP listen address derived from the configured port.
func (c *Config) ListenAddr() string {
	port := c.Server.Port
	if port <= 0 {
		port = DefaultPort
	}
	return fmt.Sprintf(":%d", port)
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Save using configurator's SaveToFile function
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Update internal state
	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
