// Package auth extracts Teamwork credentials from incoming MCP requests.
//
// The service sits behind a gateway that handles the OAuth flow and forwards
// the resulting access token on every request. This package pulls the token
// and installation domain out of the request headers and carries them through
// the request context so tool handlers can build an API client per call.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dynamic8/teamwork-mcp/internal/config"
)

// Header names the gateway sets on forwarded requests.
const (
	HeaderAuthorization = "Authorization"
	HeaderDomain        = "X-Teamwork-Domain"
)

// Credentials holds the per-request Teamwork API credentials.
type Credentials struct {
	// AccessToken is the OAuth bearer token for the Teamwork API.
	AccessToken string

	// InstallationDomain is the Teamwork installation to talk to,
	// e.g. "example.teamwork.com".
	InstallationDomain string

	// RequestID identifies the request in logs.
	RequestID string
}

type contextKey struct{}

// WithCredentials returns a context carrying the given credentials.
func WithCredentials(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, contextKey{}, creds)
}

// FromContext returns the credentials stored in the context, or nil.
func FromContext(ctx context.Context) *Credentials {
	creds, _ := ctx.Value(contextKey{}).(*Credentials)
	return creds
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// HTTPContextFunc builds the context function installed on the streamable
// HTTP transport. It reads the forwarded credentials from the request and
// falls back to the configured defaults when a header is absent, so local
// runs without a gateway still work.
func HTTPContextFunc(cfg *config.Config) func(ctx context.Context, r *http.Request) context.Context {
	return func(ctx context.Context, r *http.Request) context.Context {
		creds := &Credentials{
			RequestID: uuid.NewString(),
		}

		token, errMsg := extractBearerToken(r.Header.Get(HeaderAuthorization))
		if errMsg == "" {
			creds.AccessToken = token
		} else if cfg != nil {
			creds.AccessToken = cfg.Teamwork.AccessToken
		}

		creds.InstallationDomain = r.Header.Get(HeaderDomain)
		if creds.InstallationDomain == "" && cfg != nil {
			creds.InstallationDomain = cfg.Teamwork.Domain
		}

		return WithCredentials(ctx, creds)
	}
}
