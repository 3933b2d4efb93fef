package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamic8/teamwork-mcp/internal/auth"
	"github.com/dynamic8/teamwork-mcp/internal/config"
	"github.com/dynamic8/teamwork-mcp/internal/teamwork"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
)

// newTestServer builds an initialized tool server whose API clients talk to
// the given fake Teamwork API.
func newTestServer(t *testing.T, apiHandler http.Handler) *TeamworkToolServer {
	t.Helper()

	cfg := config.NewConfig()
	s := NewTeamworkToolServer(cfg)
	require.NoError(t, s.Initialize())

	if apiHandler != nil {
		api := httptest.NewServer(apiHandler)
		t.Cleanup(api.Close)
		s.newClient = func(creds *auth.Credentials) (*teamwork.Client, error) {
			return teamwork.NewClient(creds.AccessToken, creds.InstallationDomain,
				teamwork.WithBaseURLs(api.URL, api.URL),
				teamwork.WithHTTPClient(api.Client()))
		}
	}
	return s
}

func authedContext() context.Context {
	return auth.WithCredentials(context.Background(), &auth.Credentials{
		AccessToken:        "test-token",
		InstallationDomain: "test.teamwork.com",
		RequestID:          "req-1",
	})
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestInitializeRequiresConfig(t *testing.T) {
	s := NewTeamworkToolServer(nil)
	assert.Error(t, s.Initialize())
}

func TestStartRequiresInitialize(t *testing.T) {
	s := NewTeamworkToolServer(config.NewConfig())
	assert.Error(t, s.Start())
}

func TestToolRejectedWithoutCredentials(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleListProjects(context.Background(), callRequest("list_projects", nil))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Authorization")
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricToolCallsAuth))
}

func TestToolRejectedWithoutDomain(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := auth.WithCredentials(context.Background(), &auth.Credentials{
		AccessToken: "token",
	})

	result, err := s.handleListProjects(ctx, callRequest("list_projects", nil))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "X-Teamwork-Domain")
}

func TestHandleListProjects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"projects": [{"id": 1, "name": "Alpha", "status": "active", "company": {"name": "Acme"}}],
			"meta": {"page": {"count": 1}}
		}`))
	})
	s := newTestServer(t, mux)

	result, err := s.handleListProjects(authedContext(), callRequest("list_projects", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	projects := resp["projects"].([]any)
	require.Len(t, projects, 1)
	assert.Equal(t, "Acme", projects[0].(map[string]any)["company"])

	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricAPICallsProjects))
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricAPICallsSuccess))
}

func TestHandleGetProjectRequiresID(t *testing.T) {
	s := newTestServer(t, http.NewServeMux())

	result, err := s.handleGetProject(authedContext(), callRequest("get_project", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleUpdateProjectValidation(t *testing.T) {
	s := newTestServer(t, http.NewServeMux())

	result, err := s.handleUpdateProject(authedContext(), callRequest("update_project", map[string]any{
		"project_id": "1",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "at least one field")
}

func TestHandleUpdateTaskPassesOnlyProvidedFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/9.json", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		task := body["task"].(map[string]any)
		assert.Equal(t, "Renamed", task["name"])
		assert.Equal(t, float64(50), task["progress"])
		assert.NotContains(t, task, "description")
		assert.NotContains(t, task, "completed")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task": {"id": 9}}`))
	})
	s := newTestServer(t, mux)

	result, err := s.handleUpdateTask(authedContext(), callRequest("update_task", map[string]any{
		"task_id":  "9",
		"name":     "Renamed",
		"progress": float64(50),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestHandleGetMyTasksResolvesUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"person": {"id": 77}}`))
	})
	mux.HandleFunc("/tasks.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "77", r.URL.Query().Get("responsiblePartyIds"))
		assert.Equal(t, "within7", r.URL.Query().Get("filter"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tasks": []}`))
	})
	s := newTestServer(t, mux)

	result, err := s.handleGetMyTasks(authedContext(), callRequest("get_my_tasks", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	// Both round trips are counted: the user lookup and the task query.
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricAPICallsPeople))
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricAPICallsTasks))
	assert.Equal(t, int64(2), s.metrics.GetCounter(telemetry.MetricAPICallsSuccess))
}

func TestHandleAddTagToTaskRequiresTags(t *testing.T) {
	s := newTestServer(t, http.NewServeMux())

	result, err := s.handleAddTagToTask(authedContext(), callRequest("add_tag_to_task", map[string]any{
		"task_id": "5",
		"tag_ids": []any{},
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "tag_ids")
}

func TestHandleAPIErrorSurfacesInResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/404.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["not found"]}`, http.StatusNotFound)
	})
	s := newTestServer(t, mux)

	result, err := s.handleGetProject(authedContext(), callRequest("get_project", map[string]any{
		"project_id": "404",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "404")
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricAPICallsFailure))
}

func TestInstrumentRecordsMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	handler := s.instrument(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})
	_, err := handler(context.Background(), callRequest("noop", nil))
	require.NoError(t, err)

	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricToolCalls))
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricToolCallsSuccess))

	failing := s.instrument(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("boom"), nil
	})
	_, err = failing(context.Background(), callRequest("noop", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricToolCallsFailure))
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, config.DefaultServerName, body["service"])
	assert.Equal(t, int64(1), s.metrics.GetCounter(telemetry.MetricHealthProbes))
}

func TestHealthEndpointRejectsPost(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
