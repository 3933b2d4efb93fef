// Package teamwork wraps the Teamwork.com API v3 with a v1 fallback for the
// handful of operations (task list create/update) v3 does not fully support.
//
// Most methods return the decoded response body as a map so the tool layer
// can serialize it back out without re-modeling the whole API surface.
// Computed results (project summaries, time totals, budget estimates) get
// typed structs in types.go.
package teamwork

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
)

// DefaultTimeout bounds individual API requests.
const DefaultTimeout = 30 * time.Second

// Client is an authenticated Teamwork API client. Instances are cheap to
// build and are created per request from the forwarded gateway credentials.
type Client struct {
	accessToken string
	domain      string
	baseURL     string
	v1BaseURL   string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURLs overrides the v3 and v1 base URLs. Used by tests to point the
// client at a local server.
func WithBaseURLs(v3, v1 string) Option {
	return func(c *Client) {
		c.baseURL = v3
		c.v1BaseURL = v1
	}
}

// NewClient creates a Teamwork API client for the given installation.
// The access token and installation domain come from the gateway on each
// request, so both are required.
func NewClient(accessToken, installationDomain string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, errortypes.AuthError(
			fmt.Errorf("no access token"),
			"missing Teamwork access token")
	}
	if installationDomain == "" {
		return nil, errortypes.AuthError(
			fmt.Errorf("no installation domain"),
			"missing Teamwork installation domain")
	}

	c := &Client{
		accessToken: accessToken,
		domain:      installationDomain,
		baseURL:     fmt.Sprintf("https://%s/projects/api/v3", installationDomain),
		v1BaseURL:   fmt.Sprintf("https://%s", installationDomain),
		httpClient:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request issues a v3 API request. Paths are relative to the v3 base URL,
// e.g. "/projects.json".
func (c *Client) request(ctx context.Context, method, path string, query url.Values, payload any) (map[string]any, error) {
	return c.do(ctx, method, c.baseURL+path, query, payload)
}

// requestV1 issues a v1 API request for operations not available in v3.
// Paths are absolute on the installation, e.g. "/tasklists/123.json".
func (c *Client) requestV1(ctx context.Context, method, path string, query url.Values, payload any) (map[string]any, error) {
	return c.do(ctx, method, c.v1BaseURL+path, query, payload)
}

func (c *Client) do(ctx context.Context, method, fullURL string, query url.Values, payload any) (map[string]any, error) {
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errortypes.InternalError(err, "failed to encode request payload")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errortypes.NetworkError(err, "teamwork request failed").
			WithField("method", method).
			WithField("url", fullURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errortypes.NetworkError(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errortypes.APIError(
			fmt.Errorf("teamwork api error %d: %s", resp.StatusCode, string(respBody)),
			"teamwork api request failed").
			WithField("status", resp.StatusCode).
			WithField("method", method).
			WithField("url", fullURL)
	}

	// 204 and empty bodies become a simple success marker.
	if resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return map[string]any{"success": true}, nil
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errortypes.APIError(err, "failed to decode teamwork response").
			WithField("url", fullURL)
	}
	return result, nil
}

// pageParams builds the standard pagination query.
func pageParams(page, pageSize int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return q
}

// asMap returns v as a map, or an empty map when it is anything else.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

// asInt converts decoded JSON numbers (float64) and strings to int.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}

// asString returns v as a string, or "" for non-strings.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// metaPageCount extracts meta.page.count, the total result count across all
// pages per the v3 paging contract.
func metaPageCount(resp map[string]any) int {
	meta := asMap(resp["meta"])
	page := asMap(meta["page"])
	return asInt(page["count"])
}
