package server

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
	"github.com/dynamic8/teamwork-mcp/internal/teamwork"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
	"github.com/dynamic8/teamwork-mcp/internal/tools"
)

// registerTimeTools registers time tracking, time totals and timer tools.
// Returns the number of tools registered.
func (s *TeamworkToolServer) registerTimeTools(srv *server.MCPServer) int {
	srv.AddTool(mcp.NewTool(tools.ToolGetTimeEntries,
		mcp.WithDescription("List Teamwork time entries, optionally filtered by project or user."),
		mcp.WithString("project_id", mcp.Description("Optional project ID to filter time entries")),
		mcp.WithString("user_id", mcp.Description("Optional user ID to filter time entries")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleGetTimeEntries))

	srv.AddTool(mcp.NewTool(tools.ToolLogTime,
		mcp.WithDescription("Log a time entry against a Teamwork project, optionally linked to a task."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to log time against")),
		mcp.WithNumber("hours", mcp.Required(), mcp.Description("Number of hours to log")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Description of the work done")),
		mcp.WithString("date", mcp.Description("Date of the work (YYYY-MM-DD format, default: today)")),
		mcp.WithString("task_id", mcp.Description("Optional task ID to link the entry to")),
	), s.instrument(s.handleLogTime))

	srv.AddTool(mcp.NewTool(tools.ToolGetProjectTimeTotals,
		mcp.WithDescription("Get aggregated estimated and logged time for a project. Useful as an unofficial budget where task estimates serve as the budget and logged time as usage."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to get time totals for")),
	), s.instrument(s.handleGetProjectTimeTotals))

	srv.AddTool(mcp.NewTool(tools.ToolGetTasklistTimeTotals,
		mcp.WithDescription("Get aggregated estimated and logged time for the tasks in a task list."),
		mcp.WithString("tasklist_id", mcp.Required(), mcp.Description("Task list ID to get time totals for")),
	), s.instrument(s.handleGetTasklistTimeTotals))

	srv.AddTool(mcp.NewTool(tools.ToolGetTaskTimeTotals,
		mcp.WithDescription("Get estimated and logged time for a single task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to get time totals for")),
	), s.instrument(s.handleGetTaskTimeTotals))

	srv.AddTool(mcp.NewTool(tools.ToolEstimateProjectBudget,
		mcp.WithDescription("Get an unofficial budget estimate for a project calculated from task estimated times and logged hours. Ideal for projects without official Teamwork budgets."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to estimate budget for")),
	), s.instrument(s.handleEstimateProjectBudget))

	srv.AddTool(mcp.NewTool(tools.ToolGetActiveTimer,
		mcp.WithDescription("Get the current user's active timer, or empty if no timer is running."),
	), s.instrument(s.handleGetActiveTimer))

	srv.AddTool(mcp.NewTool(tools.ToolStartTimer,
		mcp.WithDescription("Start a new timer. Only one timer can be active per task, and only one project-level timer at a time."),
		mcp.WithString("project_id", mcp.Description("Project ID to track time against")),
		mcp.WithString("task_id", mcp.Description("Optional task ID to track time against")),
		mcp.WithString("description", mcp.Description("Description of the work being done")),
		mcp.WithBoolean("is_billable", mcp.Description("Whether the time is billable (default: true)")),
	), s.instrument(s.handleStartTimer))

	srv.AddTool(mcp.NewTool(tools.ToolStopTimer,
		mcp.WithDescription("Stop a running timer and log its time. Description and billable status can be amended while stopping."),
		mcp.WithString("timer_id", mcp.Required(), mcp.Description("Timer ID to stop")),
		mcp.WithString("description", mcp.Description("Optional updated description")),
		mcp.WithBoolean("is_billable", mcp.Description("Optional billable status update")),
	), s.instrument(s.handleStopTimer))

	srv.AddTool(mcp.NewTool(tools.ToolPauseTimer,
		mcp.WithDescription("Pause a running timer."),
		mcp.WithString("timer_id", mcp.Required(), mcp.Description("Timer ID to pause")),
	), s.instrument(s.handlePauseTimer))

	srv.AddTool(mcp.NewTool(tools.ToolResumeTimer,
		mcp.WithDescription("Resume a paused timer."),
		mcp.WithString("timer_id", mcp.Required(), mcp.Description("Timer ID to resume")),
	), s.instrument(s.handleResumeTimer))

	srv.AddTool(mcp.NewTool(tools.ToolCancelTimer,
		mcp.WithDescription("Cancel a timer without logging its time."),
		mcp.WithString("timer_id", mcp.Required(), mcp.Description("Timer ID to cancel")),
	), s.instrument(s.handleCancelTimer))

	return 12
}

func (s *TeamworkToolServer) handleGetTimeEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.ListTimeEntries(ctx,
			request.GetString("project_id", ""),
			request.GetString("user_id", ""),
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleLogTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hours, err := request.RequireFloat("hours")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.LogTime(ctx, teamwork.TimeEntry{
			ProjectID:   projectID,
			Hours:       hours,
			Description: description,
			Date:        request.GetString("date", ""),
			TaskID:      request.GetString("task_id", ""),
		})
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetProjectTimeTotals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.GetProjectTimeTotals(ctx, projectID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetTasklistTimeTotals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	tasklistID, err := request.RequireString("tasklist_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.GetTasklistTimeTotals(ctx, tasklistID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetTaskTimeTotals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.GetTaskTimeTotals(ctx, taskID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleEstimateProjectBudget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.EstimateProjectBudget(ctx, projectID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetActiveTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.GetActiveTimer(ctx)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleStartTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resp, err := s.callTime(func() (any, error) {
		return client.StartTimer(ctx, teamwork.TimerStart{
			ProjectID:   request.GetString("project_id", ""),
			TaskID:      request.GetString("task_id", ""),
			Description: request.GetString("description", ""),
			IsBillable:  request.GetBool("is_billable", true),
		})
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleStopTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	timerID, err := request.RequireString("timer_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	resp, err := s.callTime(func() (any, error) {
		return client.StopTimer(ctx, timerID,
			optString(args, "description"),
			optBool(args, "is_billable"))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handlePauseTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.timerAction(ctx, request, func(client *teamwork.Client, timerID string) (map[string]any, error) {
		return client.PauseTimer(ctx, timerID)
	})
}

func (s *TeamworkToolServer) handleResumeTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.timerAction(ctx, request, func(client *teamwork.Client, timerID string) (map[string]any, error) {
		return client.ResumeTimer(ctx, timerID)
	})
}

func (s *TeamworkToolServer) handleCancelTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.timerAction(ctx, request, func(client *teamwork.Client, timerID string) (map[string]any, error) {
		return client.CancelTimer(ctx, timerID)
	})
}

// timerAction factors the shared shape of the single-argument timer tools.
func (s *TeamworkToolServer) timerAction(ctx context.Context, request mcp.CallToolRequest, action func(*teamwork.Client, string) (map[string]any, error)) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	timerID, err := request.RequireString("timer_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if timerID == "" {
		return s.toolError(errortypes.ValidationError(errors.New("empty value"), "timer_id cannot be empty")), nil
	}

	resp, err := s.callTime(func() (any, error) {
		return action(client, timerID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

// callTime runs an API call while recording time-resource metrics.
func (s *TeamworkToolServer) callTime(fn func() (any, error)) (any, error) {
	return s.callAPI(telemetry.MetricAPICallsTime, fn)
}
