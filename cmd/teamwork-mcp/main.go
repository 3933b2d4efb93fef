package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dynamic8/teamwork-mcp/internal/config"
	"github.com/dynamic8/teamwork-mcp/internal/logger"
	"github.com/dynamic8/teamwork-mcp/internal/server"
)

// shutdownTimeout bounds how long in-flight MCP requests may drain on SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logging first thing
	appLogger := setupLogging()

	appLogger.Info("Teamwork MCP Server - Starting...")

	// Load environment overrides from .env if one exists. Missing files are
	// fine; the gateway normally injects credentials per request anyway.
	if err := godotenv.Load(); err == nil {
		appLogger.Debug("Loaded environment from .env file")
	}

	// Load configuration
	cfg, err := config.InitGlobal(config.DefaultConfigFilename)
	if err != nil {
		err = logger.ConfigError(err, "Failed to load configuration")
		logger.LogError(err)
		appLogger.Fatal("Failed to load configuration")
	}

	// Configure logging based on config
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}

	if cfg.Teamwork.Domain == "" {
		appLogger.Warn("No TEAMWORK_DOMAIN configured; clients must send the X-Teamwork-Domain header")
	}

	// Initialize the MCP server
	srv := server.NewTeamworkToolServer(cfg)
	srvLogger := appLogger.WithContext("server")

	err = srv.Initialize()
	if err != nil {
		err = logger.ConfigError(err, "Failed to initialize MCP server")
		logger.LogError(err)
		appLogger.Fatal("Failed to initialize MCP server")
	}
	srvLogger.Info("MCP server initialized")

	// Handle graceful shutdown
	setupSignalHandler(srv, appLogger)

	// Start the HTTP listener (this will block until the server is terminated)
	srvLogger.Info("Starting MCP server on %s...", cfg.ListenAddr())
	if err := srv.Start(); err != nil {
		err = logger.APIError(err, "MCP server failed")
		logger.LogError(err)
		appLogger.Fatal("Failed to start MCP server")
	}
}

// setupLogging configures and returns the application logger
func setupLogging() *logger.Logger {
	// Create default configuration
	config := logger.DefaultConfig()

	// Try to get log level from environment variable
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		config.Level = logger.ParseLevel(levelStr)
	}

	// Create and return logger
	appLogger := logger.New(config)
	logger.SetDefaultLogger(appLogger)

	return appLogger
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(srv *server.TeamworkToolServer, log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			err = logger.APIError(err, "Error stopping server during shutdown")
			logger.LogError(err)
		} else {
			log.Info("HTTP listener closed successfully")
		}

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
