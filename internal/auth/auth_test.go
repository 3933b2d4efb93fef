package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamic8/teamwork-mcp/internal/config"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		token   string
		wantErr string
	}{
		{"valid token", "Bearer tw-token-123", "tw-token-123", ""},
		{"missing header", "", "", "missing authorization header"},
		{"wrong scheme", "Basic dXNlcg==", "", "invalid authorization header format"},
		{"empty token", "Bearer ", "", "empty token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, errMsg := extractBearerToken(tt.header)
			assert.Equal(t, tt.token, token)
			assert.Equal(t, tt.wantErr, errMsg)
		})
	}
}

func TestHTTPContextFuncFromHeaders(t *testing.T) {
	cfg := config.NewConfig()
	fn := HTTPContextFunc(cfg)

	r := httptest.NewRequest("POST", "/mcp", nil)
	r.Header.Set(HeaderAuthorization, "Bearer forwarded-token")
	r.Header.Set(HeaderDomain, "acme.teamwork.com")

	ctx := fn(context.Background(), r)
	creds := FromContext(ctx)
	require.NotNil(t, creds)

	assert.Equal(t, "forwarded-token", creds.AccessToken)
	assert.Equal(t, "acme.teamwork.com", creds.InstallationDomain)
	assert.NotEmpty(t, creds.RequestID)
}

func TestHTTPContextFuncFallsBackToConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Teamwork.AccessToken = "config-token"
	cfg.Teamwork.Domain = "fallback.teamwork.com"
	fn := HTTPContextFunc(cfg)

	r := httptest.NewRequest("POST", "/mcp", nil)

	creds := FromContext(fn(context.Background(), r))
	require.NotNil(t, creds)

	assert.Equal(t, "config-token", creds.AccessToken)
	assert.Equal(t, "fallback.teamwork.com", creds.InstallationDomain)
}

func TestFromContextWithoutCredentials(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestRequestIDsAreUnique(t *testing.T) {
	fn := HTTPContextFunc(config.NewConfig())

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		r := httptest.NewRequest("POST", "/mcp", nil)
		creds := FromContext(fn(context.Background(), r))
		require.NotNil(t, creds)
		assert.False(t, seen[creds.RequestID])
		seen[creds.RequestID] = true
	}
}
