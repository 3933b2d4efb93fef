package teamwork

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-token", "test.teamwork.com",
		WithBaseURLs(srv.URL, srv.URL),
		WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "test.teamwork.com")
	require.Error(t, err)
	assert.True(t, errortypes.IsAuthError(err))

	_, err = NewClient("token", "")
	require.Error(t, err)
	assert.True(t, errortypes.IsAuthError(err))
}

func TestRequestSendsBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, map[string]any{"person": map[string]any{"id": 42}})
	}))

	_, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestRequestAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["project not found"]}`, http.StatusNotFound)
	}))

	_, err := client.GetProject(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, errortypes.IsAPIError(err))

	var appErr *errortypes.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Fields["status"])
}

func TestEmptyResponseBecomesSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	resp, err := client.CancelTimer(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"success": true}, resp)
}

func TestListProjectsMinimalProjection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("pageSize"))
		writeJSON(t, w, map[string]any{
			"projects": []any{
				map[string]any{
					"id":          1174174,
					"name":        "Website Redesign",
					"status":      "active",
					"company":     map[string]any{"id": 5, "name": "Acme"},
					"description": "should be dropped",
				},
			},
			"meta": map[string]any{"page": map[string]any{"count": 1}},
		})
	})
	client, _ := newTestClient(t, mux)

	resp, err := client.ListProjects(context.Background(), 2, 25, false)
	require.NoError(t, err)

	projects, ok := resp["projects"].([]any)
	require.True(t, ok)
	require.Len(t, projects, 1)

	project := projects[0].(map[string]any)
	assert.Equal(t, "Website Redesign", project["name"])
	assert.Equal(t, "Acme", project["company"])
	assert.NotContains(t, project, "description")
	assert.NotNil(t, resp["meta"])
}

func TestListProjectsIncludeDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"projects": []any{
				map[string]any{"id": 1, "name": "Full", "description": "kept"},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	resp, err := client.ListProjects(context.Background(), 1, 25, true)
	require.NoError(t, err)

	project := resp["projects"].([]any)[0].(map[string]any)
	assert.Equal(t, "kept", project["description"])
}

func TestUpdateProjectRequiresFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the API")
	}))

	_, err := client.UpdateProject(context.Background(), "1", ProjectUpdate{})
	require.Error(t, err)
	assert.True(t, errortypes.IsValidationError(err))
}

func TestArchiveProjectSetsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1174174.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		body := decodeBody(t, r)
		project := body["project"].(map[string]any)
		assert.Equal(t, "archived", project["status"])
		writeJSON(t, w, map[string]any{"project": map[string]any{"id": 1174174}})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.ArchiveProject(context.Background(), "1174174")
	require.NoError(t, err)
}

func TestCreateTaskValidation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the API")
	}))

	negative := -5
	_, err := client.CreateTask(context.Background(), TaskCreate{
		Name: "t", TasklistID: "10", EstimatedMinutes: &negative,
	})
	require.Error(t, err)
	assert.True(t, errortypes.IsValidationError(err))

	over := 150
	_, err = client.CreateTask(context.Background(), TaskCreate{
		Name: "t", TasklistID: "10", Progress: &over,
	})
	require.Error(t, err)
	assert.True(t, errortypes.IsValidationError(err))

	_, err = client.CreateTask(context.Background(), TaskCreate{
		Name: "t", TasklistID: "not-a-number",
	})
	require.Error(t, err)
	assert.True(t, errortypes.IsValidationError(err))
}

func TestCreateTaskPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasklists/10/tasks.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		task := decodeBody(t, r)["task"].(map[string]any)
		assert.Equal(t, "Write tests", task["name"])
		assert.Equal(t, float64(10), task["tasklistId"])
		assert.Equal(t, float64(90), task["estimatedMinutes"])
		assert.NotContains(t, task, "progress")
		writeJSON(t, w, map[string]any{"task": map[string]any{"id": 77}})
	})
	client, _ := newTestClient(t, mux)

	estimated := 90
	_, err := client.CreateTask(context.Background(), TaskCreate{
		Name: "Write tests", TasklistID: "10", EstimatedMinutes: &estimated,
	})
	require.NoError(t, err)
}

func TestGetMyTasksParams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks.json", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "42", q.Get("responsiblePartyIds"))
		assert.Equal(t, "within7", q.Get("filter"))
		assert.Equal(t, "100", q.Get("pageSize"))
		assert.Equal(t, "false", q.Get("includeCompletedTasks"))
		writeJSON(t, w, map[string]any{"tasks": []any{}})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.GetMyTasks(context.Background(), "42", "within7", false, 100)
	require.NoError(t, err)
}

func TestGetProjectSummary(t *testing.T) {
	longDescription := ""
	for i := 0; i < 30; i++ {
		longDescription += "0123456789"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1174174.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{
				"id":          1174174,
				"name":        "Website Redesign",
				"status":      "active",
				"description": longDescription,
			},
		})
	})
	mux.HandleFunc("/tasks.json", func(w http.ResponseWriter, r *http.Request) {
		count := 20
		switch r.URL.Query().Get("filter") {
		case "overdue":
			count = 4
		case "thisweek":
			count = 6
		}
		writeJSON(t, w, map[string]any{
			"meta": map[string]any{"page": map[string]any{"count": count}},
		})
	})
	client, _ := newTestClient(t, mux)

	summary, err := client.GetProjectSummary(context.Background(), "1174174")
	require.NoError(t, err)

	assert.Equal(t, 1174174, summary.Project.ID)
	assert.Equal(t, 20, summary.TaskStats.Total)
	assert.Equal(t, 4, summary.TaskStats.Overdue)
	assert.Equal(t, 6, summary.TaskStats.DueThisWeek)
	// 4/20 = 20% overdue
	assert.Equal(t, "at-risk", summary.Health)
	assert.Len(t, summary.Project.Description, 200)
	assert.Equal(t, "...", summary.Project.Description[197:])
}

func TestGetProjectSummaryOnTrack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{"id": 1, "name": "Quiet", "status": "active"},
		})
	})
	mux.HandleFunc("/tasks.json", func(w http.ResponseWriter, r *http.Request) {
		count := 50
		switch r.URL.Query().Get("filter") {
		case "overdue":
			count = 2
		case "thisweek":
			count = 5
		}
		writeJSON(t, w, map[string]any{
			"meta": map[string]any{"page": map[string]any{"count": count}},
		})
	})
	client, _ := newTestClient(t, mux)

	summary, err := client.GetProjectSummary(context.Background(), "1")
	require.NoError(t, err)
	// 2/50 = 4% overdue and fewer than 3 overdue tasks
	assert.Equal(t, "on-track", summary.Health)
}

func TestGetProjectSummaryMultibyteDescription(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			// 150 characters but 300 bytes; the limit counts characters.
			name:        "under the limit",
			description: strings.Repeat("é", 150),
			want:        strings.Repeat("é", 150),
		},
		{
			name:        "over the limit",
			description: strings.Repeat("é", 250),
			want:        strings.Repeat("é", 197) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/projects/1.json", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, map[string]any{
					"project": map[string]any{"id": 1, "name": "Accents", "status": "active", "description": tt.description},
				})
			})
			mux.HandleFunc("/tasks.json", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, map[string]any{
					"meta": map[string]any{"page": map[string]any{"count": 0}},
				})
			})
			client, _ := newTestClient(t, mux)

			summary, err := client.GetProjectSummary(context.Background(), "1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, summary.Project.Description)
			assert.True(t, utf8.ValidString(summary.Project.Description))
		})
	}
}

func TestCreateTaskListUsesV1Payload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1/tasklists.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body := decodeBody(t, r)
		todoList := body["todo-list"].(map[string]any)
		assert.Equal(t, "Sprint 12", todoList["name"])
		writeJSON(t, w, map[string]any{"STATUS": "OK"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.CreateTaskList(context.Background(), "1", "Sprint 12", "")
	require.NoError(t, err)
}

func TestUpdateTaskListRequiresField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the API")
	}))

	_, err := client.UpdateTaskList(context.Background(), "5", nil, nil)
	require.Error(t, err)
	assert.True(t, errortypes.IsValidationError(err))
}

func TestStartTimerPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/timers.json", func(w http.ResponseWriter, r *http.Request) {
		timer := decodeBody(t, r)["timer"].(map[string]any)
		assert.Equal(t, float64(123), timer["projectId"])
		assert.Equal(t, false, timer["isBillable"])
		writeJSON(t, w, map[string]any{"timer": map[string]any{"id": 9}})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.StartTimer(context.Background(), TimerStart{
		ProjectID: "123", IsBillable: false,
	})
	require.NoError(t, err)
}

func TestStartTimerBillableOmitted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/timers.json", func(w http.ResponseWriter, r *http.Request) {
		timer := decodeBody(t, r)["timer"].(map[string]any)
		assert.NotContains(t, timer, "isBillable")
		writeJSON(t, w, map[string]any{"timer": map[string]any{"id": 9}})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.StartTimer(context.Background(), TimerStart{
		ProjectID: "123", IsBillable: true,
	})
	require.NoError(t, err)
}

func TestStartTimerRejectsNonNumericIDs(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the API")
	}))

	_, err := client.StartTimer(context.Background(), TimerStart{ProjectID: "abc", IsBillable: true})
	require.Error(t, err)
	assert.True(t, errortypes.IsValidationError(err))
}

func TestGetProjectTimeTotals(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1/time/total.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{
				"id": 1,
				"timeTotals": map[string]any{
					"estimatedMinutes": 600,
					"minutes":          720,
				},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	totals, err := client.GetProjectTimeTotals(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 600, totals.EstimatedMinutes)
	assert.Equal(t, 720, totals.Minutes)
	assert.Equal(t, -120, totals.RemainingMinutes)
	assert.True(t, totals.IsOverBudget)
}

func TestGetProjectTimeTotalsPluralShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1/time/total.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"projects": []any{
				map[string]any{
					"timeTotals": map[string]any{
						"estimatedMinutes": 300,
						"minutes":          60,
					},
				},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	totals, err := client.GetProjectTimeTotals(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 300, totals.EstimatedMinutes)
	assert.Equal(t, 240, totals.RemainingMinutes)
	assert.False(t, totals.IsOverBudget)
}

func TestEstimateProjectBudget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{
				"id":         1,
				"name":       "Internal Tooling",
				"timeBudget": nil,
			},
		})
	})
	mux.HandleFunc("/projects/1/time/total.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{
				"timeTotals": map[string]any{
					"estimatedMinutes": 1000,
					"minutes":          250,
				},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	estimate, err := client.EstimateProjectBudget(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "estimated", estimate.BudgetType)
	assert.Equal(t, 1000, estimate.BudgetMinutes)
	assert.Equal(t, 250, estimate.UsedMinutes)
	assert.Equal(t, 750, estimate.RemainingMinutes)
	require.NotNil(t, estimate.PercentUsed)
	assert.InDelta(t, 25.0, *estimate.PercentUsed, 0.001)
	assert.False(t, estimate.IsOverBudget)
	assert.False(t, estimate.HasOfficialBudget)
}

func TestEstimateProjectBudgetNoEstimates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{
				"id":                1,
				"name":              "Untracked",
				"financialBudgetId": 127645,
			},
		})
	})
	mux.HandleFunc("/projects/1/time/total.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{
				"timeTotals": map[string]any{
					"estimatedMinutes": 0,
					"minutes":          90,
				},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	estimate, err := client.EstimateProjectBudget(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, estimate.PercentUsed)
	assert.True(t, estimate.IsOverBudget)
	assert.True(t, estimate.HasOfficialBudget)
}

func TestListProjectBudgets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1/budgets.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"budgets": []any{
				map[string]any{"id": 127645, "type": "FINANCIAL", "capacity": 5000},
			},
		})
	})
	mux.HandleFunc("/projects/1.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"project": map[string]any{"id": 1, "name": "Budgeted"},
		})
	})
	client, _ := newTestClient(t, mux)

	resp, err := client.ListProjectBudgets(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "Budgeted", resp["project_name"])
	assert.Equal(t, false, resp["has_time_budget"])
	assert.Equal(t, true, resp["has_financial_budget"])
	assert.Len(t, resp["budgets"], 1)
}

func TestAddTagToTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/5/tags.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body := decodeBody(t, r)
		assert.Equal(t, []any{"1", "2"}, body["tagIds"])
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newTestClient(t, mux)

	resp, err := client.AddTagToTask(context.Background(), "5", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, true, resp["success"])
}
