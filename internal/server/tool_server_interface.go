package server

import "context"

// ToolServer defines the lifecycle of an MCP tool server.
type ToolServer interface {
	// Initialize prepares the server and registers its tools.
	Initialize() error

	// Start runs the server until it is stopped or fails.
	Start() error

	// Stop shuts the server down, honoring the context deadline.
	Stop(ctx context.Context) error
}

// Ensure TeamworkToolServer implements the interface.
var _ ToolServer = (*TeamworkToolServer)(nil)
