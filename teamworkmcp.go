// Package teamworkmcp exposes the Teamwork MCP service as an embeddable
// library. Most deployments run the cmd/teamwork-mcp binary; this package
// exists for programs that want to host the server themselves.
package teamworkmcp

import (
	"context"
	"log/slog"

	"github.com/dynamic8/teamwork-mcp/internal/config"
	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
	"github.com/dynamic8/teamwork-mcp/internal/server"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
)

// Config represents the configuration for the Teamwork MCP service.
type Config = config.Config

// Server represents the Teamwork MCP service.
type Server struct {
	config     *config.Config
	toolServer *server.TeamworkToolServer
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new Teamwork MCP Server with the given options.
// If opts.Config is provided, it is used directly. Otherwise, if
// opts.ConfigPath is provided, configuration is loaded from that path.
// If neither is provided, DefaultConfig() is used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for server initialization")
		cfg = DefaultConfig()
	}

	logger.Info("Initializing Teamwork tool server component")
	toolServer := server.NewTeamworkToolServer(cfg)
	if err := toolServer.Initialize(); err != nil {
		logger.Error("Failed to initialize Teamwork tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize Teamwork tool server component")
	}

	logger.Info("Teamwork MCP server successfully initialized")
	return &Server{
		config:     cfg,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the Teamwork MCP
// service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Start starts the service. It blocks until the HTTP listener fails or
// Stop is called.
func (s *Server) Start() error {
	s.logger.Info("Starting Teamwork MCP service", "addr", s.config.ListenAddr())
	return s.toolServer.Start()
}

// Stop stops the service, honoring the context deadline for draining
// in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping Teamwork MCP service")
	if err := s.toolServer.Stop(ctx); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}
	s.logger.Info("Teamwork MCP service stopped")
	return nil
}

// Configuration returns the server's resolved configuration.
func (s *Server) Configuration() *Config {
	return s.config
}

// Metrics returns the service's metrics collector.
func (s *Server) Metrics() *telemetry.MetricsCollector {
	return s.toolServer.Metrics()
}
