// Package server provides the MCP server implementation for the Teamwork
// integration service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dynamic8/teamwork-mcp/internal/auth"
	"github.com/dynamic8/teamwork-mcp/internal/config"
	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
	"github.com/dynamic8/teamwork-mcp/internal/teamwork"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingConfig        = errors.New("configuration is nil")
)

// clientFactory builds a Teamwork API client from per-request credentials.
// Swappable so tests can point clients at a local server.
type clientFactory func(creds *auth.Credentials) (*teamwork.Client, error)

// TeamworkToolServer implements the ToolServer interface, exposing the
// Teamwork API operations as MCP tools over streamable HTTP.
type TeamworkToolServer struct {
	cfg        *config.Config
	metrics    *telemetry.MetricsCollector
	newClient  clientFactory
	mcpServer  *server.MCPServer
	httpServer *http.Server
}

// NewTeamworkToolServer creates a new TeamworkToolServer instance.
func NewTeamworkToolServer(cfg *config.Config) *TeamworkToolServer {
	s := &TeamworkToolServer{
		cfg:     cfg,
		metrics: telemetry.NewMetricsCollector(),
	}
	s.newClient = func(creds *auth.Credentials) (*teamwork.Client, error) {
		return teamwork.NewClient(creds.AccessToken, creds.InstallationDomain,
			teamwork.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}))
	}
	return s
}

// Initialize builds the MCP server and registers all tools.
func (s *TeamworkToolServer) Initialize() error {
	slog.Info("Initializing Teamwork MCP Tool Server")

	if s.cfg == nil {
		return errortypes.ConfigError(ErrMissingConfig, "server initialization failed")
	}

	srv := server.NewMCPServer(
		s.cfg.Server.Name,
		s.cfg.Server.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	count := 0
	count += s.registerProjectTools(srv)
	count += s.registerTaskTools(srv)
	count += s.registerTimeTools(srv)
	count += s.registerPeopleTools(srv)

	s.mcpServer = srv
	slog.Info("Teamwork MCP Tool Server initialized successfully", "tool_count", count)
	return nil
}

// Start serves the MCP endpoint and the health probe over HTTP. It blocks
// until the listener fails or Stop is called.
func (s *TeamworkToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithHTTPContextFunc(auth.HTTPContextFunc(s.cfg)))

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)
	mux.Handle("/mcp/", streamable)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleNotFound)

	addr := s.cfg.ListenAddr()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streamable responses stay open
	}

	slog.Info("Starting Teamwork MCP Tool Server", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errortypes.NetworkError(err, "http server failed")
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *TeamworkToolServer) Stop(ctx context.Context) error {
	slog.Info("Stopping Teamwork MCP Tool Server")
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the HTTP handler, for tests that drive the server without
// binding a port.
func (s *TeamworkToolServer) Handler() http.Handler {
	if s.httpServer != nil {
		return s.httpServer.Handler
	}
	return nil
}

// Metrics exposes the server's metrics collector.
func (s *TeamworkToolServer) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// handleHealth serves the gateway liveness probe.
func (s *TeamworkToolServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		HandleBadRequest(w, "health endpoint only supports GET", fmt.Errorf("method %s", r.Method))
		return
	}

	s.metrics.IncrementCounter(telemetry.MetricHealthProbes, 1)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": s.cfg.Server.Name,
		"version": s.cfg.Server.Version,
	}); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

func (s *TeamworkToolServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	HandleNotFound(w, "unknown path", fmt.Errorf("no handler for %s", r.URL.Path))
}

// instrument wraps a tool handler with call counters and latency tracking.
func (s *TeamworkToolServer) instrument(handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

		result, err := handler(ctx, request)

		s.metrics.RecordTimer(telemetry.MetricResponseTimeTool, time.Since(start))
		if err != nil || (result != nil && result.IsError) {
			s.metrics.IncrementCounter(telemetry.MetricToolCallsFailure, 1)
		} else {
			s.metrics.IncrementCounter(telemetry.MetricToolCallsSuccess, 1)
		}
		return result, err
	}
}
