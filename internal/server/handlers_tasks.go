package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dynamic8/teamwork-mcp/internal/teamwork"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
	"github.com/dynamic8/teamwork-mcp/internal/tools"
)

// registerTaskTools registers task, subtask and task list tools. Returns the
// number of tools registered.
func (s *TeamworkToolServer) registerTaskTools(srv *server.MCPServer) int {
	srv.AddTool(mcp.NewTool(tools.ToolListTasks,
		mcp.WithDescription("List Teamwork tasks, optionally filtered by project."),
		mcp.WithString("project_id", mcp.Description("Optional project ID to filter tasks")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListTasks))

	srv.AddTool(mcp.NewTool(tools.ToolGetTask,
		mcp.WithDescription("Get details of a specific Teamwork task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task to retrieve")),
	), s.instrument(s.handleGetTask))

	srv.AddTool(mcp.NewTool(tools.ToolCreateTask,
		mcp.WithDescription("Create a new Teamwork task in a task list."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Task name")),
		mcp.WithString("tasklist_id", mcp.Required(), mcp.Description("Task list ID to create the task in")),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("due_date", mcp.Description("Due date in YYYY-MM-DD format")),
		mcp.WithArray("assignee_ids", mcp.Description("List of user IDs to assign"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("priority", mcp.Description("Priority level (low, medium, high)")),
		mcp.WithNumber("estimated_minutes", mcp.Description("Estimated time to complete in minutes (must be positive)")),
		mcp.WithNumber("progress", mcp.Description("Progress percentage (0=not started, 100=complete)")),
	), s.instrument(s.handleCreateTask))

	srv.AddTool(mcp.NewTool(tools.ToolUpdateTask,
		mcp.WithDescription("Update an existing Teamwork task. Only provided fields are changed."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to update")),
		mcp.WithString("name", mcp.Description("New task name")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithBoolean("completed", mcp.Description("Mark as completed")),
		mcp.WithString("due_date", mcp.Description("New due date in YYYY-MM-DD format")),
		mcp.WithString("priority", mcp.Description("Priority level (low, medium, high)")),
		mcp.WithNumber("estimated_minutes", mcp.Description("Estimated time to complete in minutes (must be positive)")),
		mcp.WithNumber("progress", mcp.Description("Progress percentage (0=not started, 100=complete)")),
	), s.instrument(s.handleUpdateTask))

	srv.AddTool(mcp.NewTool(tools.ToolCompleteTask,
		mcp.WithDescription("Mark a Teamwork task as complete."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to complete")),
	), s.instrument(s.handleCompleteTask))

	srv.AddTool(mcp.NewTool(tools.ToolMoveTask,
		mcp.WithDescription("Move a task to a different task list, optionally across projects."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to move")),
		mcp.WithString("target_tasklist_id", mcp.Required(), mcp.Description("Task list ID to move the task to")),
		mcp.WithString("target_project_id", mcp.Description("Project ID when moving across projects")),
	), s.instrument(s.handleMoveTask))

	srv.AddTool(mcp.NewTool(tools.ToolGetMyTasks,
		mcp.WithDescription("Get tasks assigned to the current user with due date filtering. Useful for daily planning."),
		mcp.WithString("date_filter", mcp.Description("Date filter: overdue, today, thisweek, within7, within14, within30 (default: within7)")),
		mcp.WithBoolean("include_completed", mcp.Description("Whether to include completed tasks (default: false)")),
	), s.instrument(s.handleGetMyTasks))

	srv.AddTool(mcp.NewTool(tools.ToolListSubtasks,
		mcp.WithDescription("List subtasks of a Teamwork task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Parent task ID")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListSubtasks))

	srv.AddTool(mcp.NewTool(tools.ToolCreateSubtask,
		mcp.WithDescription("Create a subtask under a parent Teamwork task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Parent task ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Subtask name")),
		mcp.WithString("description", mcp.Description("Subtask description")),
		mcp.WithArray("assignee_ids", mcp.Description("List of user IDs to assign"), mcp.Items(map[string]any{"type": "string"})),
	), s.instrument(s.handleCreateSubtask))

	srv.AddTool(mcp.NewTool(tools.ToolListTaskLists,
		mcp.WithDescription("List task lists for a Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListTaskLists))

	srv.AddTool(mcp.NewTool(tools.ToolCreateTaskList,
		mcp.WithDescription("Create a new task list in a Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to create the task list in")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Task list name")),
		mcp.WithString("description", mcp.Description("Task list description")),
	), s.instrument(s.handleCreateTaskList))

	srv.AddTool(mcp.NewTool(tools.ToolUpdateTaskList,
		mcp.WithDescription("Update a Teamwork task list's name or description. At least one must be provided."),
		mcp.WithString("tasklist_id", mcp.Required(), mcp.Description("Task list ID to update")),
		mcp.WithString("name", mcp.Description("New task list name")),
		mcp.WithString("description", mcp.Description("New task list description")),
	), s.instrument(s.handleUpdateTaskList))

	return 12
}

func (s *TeamworkToolServer) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.ListTasks(ctx,
			request.GetString("project_id", ""),
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.GetTask(ctx, taskID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tasklistID, err := request.RequireString("tasklist_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	tc := teamwork.TaskCreate{
		Name:             name,
		TasklistID:       tasklistID,
		Description:      request.GetString("description", ""),
		DueDate:          request.GetString("due_date", ""),
		AssigneeIDs:      request.GetStringSlice("assignee_ids", nil),
		Priority:         request.GetString("priority", ""),
		EstimatedMinutes: optInt(args, "estimated_minutes"),
		Progress:         optInt(args, "progress"),
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.CreateTask(ctx, tc)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleUpdateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	upd := teamwork.TaskUpdate{
		Name:             optString(args, "name"),
		Description:      optString(args, "description"),
		Completed:        optBool(args, "completed"),
		DueDate:          optString(args, "due_date"),
		Priority:         optString(args, "priority"),
		EstimatedMinutes: optInt(args, "estimated_minutes"),
		Progress:         optInt(args, "progress"),
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.UpdateTask(ctx, taskID, upd)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleCompleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.CompleteTask(ctx, taskID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleMoveTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetTasklistID, err := request.RequireString("target_tasklist_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.MoveTask(ctx, taskID, targetTasklistID, request.GetString("target_project_id", ""))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetMyTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resolved, err := s.callPeople(func() (any, error) {
		return client.CurrentUserID(ctx)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	userID := resolved.(string)

	resp, err := s.callTasks(func() (any, error) {
		return client.GetMyTasks(ctx, userID,
			request.GetString("date_filter", tools.DefaultDateFilter),
			request.GetBool("include_completed", false),
			tools.DefaultMyTasksPageSize)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListSubtasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.ListSubtasks(ctx, taskID,
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleCreateSubtask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.CreateSubtask(ctx, taskID, name,
			request.GetString("description", ""),
			request.GetStringSlice("assignee_ids", nil))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListTaskLists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTasks(func() (any, error) {
		return client.ListTaskLists(ctx, projectID,
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleCreateTaskList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callTasksV1(func() (any, error) {
		return client.CreateTaskList(ctx, projectID, name, request.GetString("description", ""))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleUpdateTaskList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	tasklistID, err := request.RequireString("tasklist_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	resp, err := s.callTasksV1(func() (any, error) {
		return client.UpdateTaskList(ctx, tasklistID,
			optString(args, "name"),
			optString(args, "description"))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

// callTasks runs an API call while recording task-resource metrics.
func (s *TeamworkToolServer) callTasks(fn func() (any, error)) (any, error) {
	return s.callAPI(telemetry.MetricAPICallsTasks, fn)
}

// callTasksV1 additionally counts v1 fallback usage.
func (s *TeamworkToolServer) callTasksV1(fn func() (any, error)) (any, error) {
	s.metrics.IncrementCounter(telemetry.MetricAPICallsV1Fallback, 1)
	return s.callAPI(telemetry.MetricAPICallsTasks, fn)
}
