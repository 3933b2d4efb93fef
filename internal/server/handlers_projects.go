package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dynamic8/teamwork-mcp/internal/teamwork"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
	"github.com/dynamic8/teamwork-mcp/internal/tools"
)

// registerProjectTools registers the project and budget tools. Returns the
// number of tools registered.
func (s *TeamworkToolServer) registerProjectTools(srv *server.MCPServer) int {
	srv.AddTool(mcp.NewTool(tools.ToolListProjects,
		mcp.WithDescription("List all Teamwork projects. By default returns minimal project data (id, name, status, company) to reduce response size. Use include_details=true for full project objects."),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 25, max: 500)")),
		mcp.WithBoolean("include_details", mcp.Description("Return full project objects (default: false for minimal data)")),
	), s.instrument(s.handleListProjects))

	srv.AddTool(mcp.NewTool(tools.ToolGetProject,
		mcp.WithDescription("Get details of a specific Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("The ID of the project to retrieve")),
	), s.instrument(s.handleGetProject))

	srv.AddTool(mcp.NewTool(tools.ToolCreateProject,
		mcp.WithDescription("Create a new Teamwork project."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("description", mcp.Description("Optional project description")),
		mcp.WithString("start_date", mcp.Description("Optional start date (YYYY-MM-DD format)")),
		mcp.WithString("end_date", mcp.Description("Optional end date (YYYY-MM-DD format)")),
	), s.instrument(s.handleCreateProject))

	srv.AddTool(mcp.NewTool(tools.ToolUpdateProject,
		mcp.WithDescription("Update an existing Teamwork project. At least one field must be provided."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to update")),
		mcp.WithString("name", mcp.Description("New project name")),
		mcp.WithString("description", mcp.Description("New project description")),
		mcp.WithString("status", mcp.Description("New status (active, archived, current, late, completed)")),
		mcp.WithString("start_date", mcp.Description("New start date (YYYY-MM-DD format)")),
		mcp.WithString("end_date", mcp.Description("New end date (YYYY-MM-DD format)")),
	), s.instrument(s.handleUpdateProject))

	srv.AddTool(mcp.NewTool(tools.ToolArchiveProject,
		mcp.WithDescription("Archive a Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to archive")),
	), s.instrument(s.handleArchiveProject))

	srv.AddTool(mcp.NewTool(tools.ToolGetProjectSummary,
		mcp.WithDescription("Get a project health summary with task statistics (total, overdue, due this week) and an on-track/at-risk indicator."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to summarize")),
	), s.instrument(s.handleGetProjectSummary))

	srv.AddTool(mcp.NewTool(tools.ToolGetProjectBudget,
		mcp.WithDescription("Get detailed budget information for a project budget. Use the budget ID from financialBudget.id or timeBudget.id returned by list_projects or get_project."),
		mcp.WithString("budget_id", mcp.Required(), mcp.Description("The budget ID (e.g., \"127645\" from financialBudget.id)")),
	), s.instrument(s.handleGetProjectBudget))

	srv.AddTool(mcp.NewTool(tools.ToolListProjectBudgets,
		mcp.WithDescription("List all budgets for a Teamwork project. Returns both time and financial budgets with capacity, capacityUsed, status and other details."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("The project ID to get budgets for")),
	), s.instrument(s.handleListProjectBudgets))

	return 8
}

func (s *TeamworkToolServer) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	page := request.GetInt("page", 1)
	pageSize := request.GetInt("page_size", tools.DefaultProjectPageSize)
	includeDetails := request.GetBool("include_details", false)

	resp, err := s.callProjects(func() (any, error) {
		return client.ListProjects(ctx, page, pageSize, includeDetails)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callProjects(func() (any, error) {
		return client.GetProject(ctx, projectID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callProjects(func() (any, error) {
		return client.CreateProject(ctx, name,
			request.GetString("description", ""),
			request.GetString("start_date", ""),
			request.GetString("end_date", ""))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleUpdateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	upd := teamwork.ProjectUpdate{
		Name:        optString(args, "name"),
		Description: optString(args, "description"),
		Status:      optString(args, "status"),
		StartDate:   optString(args, "start_date"),
		EndDate:     optString(args, "end_date"),
	}

	resp, err := s.callProjects(func() (any, error) {
		return client.UpdateProject(ctx, projectID, upd)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleArchiveProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callProjects(func() (any, error) {
		return client.ArchiveProject(ctx, projectID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetProjectSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callProjects(func() (any, error) {
		return client.GetProjectSummary(ctx, projectID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetProjectBudget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	budgetID, err := request.RequireString("budget_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callProjects(func() (any, error) {
		return client.GetProjectBudget(ctx, budgetID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListProjectBudgets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callProjects(func() (any, error) {
		return client.ListProjectBudgets(ctx, projectID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

// callProjects runs an API call while recording project-resource metrics.
func (s *TeamworkToolServer) callProjects(fn func() (any, error)) (any, error) {
	return s.callAPI(telemetry.MetricAPICallsProjects, fn)
}

// callAPI runs an API call while recording latency and success counters
// under the given resource metric.
func (s *TeamworkToolServer) callAPI(metric string, fn func() (any, error)) (any, error) {
	start := time.Now()
	s.metrics.IncrementCounter(metric, 1)

	resp, err := fn()

	s.metrics.RecordTimer(telemetry.MetricResponseTimeAPI, time.Since(start))
	if err == nil {
		s.metrics.IncrementCounter(telemetry.MetricAPICallsSuccess, 1)
	}
	return resp, err
}
