package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dynamic8/teamwork-mcp/internal/auth"
	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
	"github.com/dynamic8/teamwork-mcp/internal/teamwork"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
)

// clientFor builds a Teamwork client from the credentials the transport
// attached to the request context. A non-nil result on the second return
// value means the call was rejected before reaching the API.
func (s *TeamworkToolServer) clientFor(ctx context.Context) (*teamwork.Client, *mcp.CallToolResult) {
	creds := auth.FromContext(ctx)
	if creds == nil || creds.AccessToken == "" {
		s.metrics.IncrementCounter(telemetry.MetricToolCallsAuth, 1)
		return nil, mcp.NewToolResultError(
			"Missing Authorization header. This server requires OAuth authentication via the gateway.")
	}
	if creds.InstallationDomain == "" {
		s.metrics.IncrementCounter(telemetry.MetricToolCallsAuth, 1)
		return nil, mcp.NewToolResultError(
			"Teamwork installation domain is required. Provide via X-Teamwork-Domain header or TEAMWORK_DOMAIN environment variable.")
	}

	client, err := s.newClient(creds)
	if err != nil {
		s.metrics.IncrementCounter(telemetry.MetricToolCallsAuth, 1)
		return nil, s.toolError(err)
	}
	return client, nil
}

// jsonResult serializes a value as the tool's text content.
func (s *TeamworkToolServer) jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.toolError(errortypes.InternalError(err, "failed to encode tool result")), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError logs the error and converts it into an MCP error result. Tool
// failures stay in-band so clients see the message rather than a transport
// fault.
func (s *TeamworkToolServer) toolError(err error) *mcp.CallToolResult {
	errortypes.LogError(slog.Default(), err)
	s.metrics.IncrementCounter(telemetry.MetricAPICallsFailure, 1)
	return mcp.NewToolResultError(err.Error())
}

// Argument helpers. The raw arguments map distinguishes absent keys from
// zero values, which patch-style tools need.

func optString(args map[string]any, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func optBool(args map[string]any, key string) *bool {
	if v, ok := args[key].(bool); ok {
		return &v
	}
	return nil
}

func optInt(args map[string]any, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	default:
		return nil
	}
}
