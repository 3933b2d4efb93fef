package server

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
	"github.com/dynamic8/teamwork-mcp/internal/telemetry"
	"github.com/dynamic8/teamwork-mcp/internal/tools"
)

// registerPeopleTools registers people, comment, tag, milestone, notebook and
// message tools. Returns the number of tools registered.
func (s *TeamworkToolServer) registerPeopleTools(srv *server.MCPServer) int {
	srv.AddTool(mcp.NewTool(tools.ToolListPeople,
		mcp.WithDescription("List Teamwork people, optionally filtered by project."),
		mcp.WithString("project_id", mcp.Description("Optional project ID to filter people")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListPeople))

	srv.AddTool(mcp.NewTool(tools.ToolGetMe,
		mcp.WithDescription("Get the current authenticated user's information."),
	), s.instrument(s.handleGetMe))

	srv.AddTool(mcp.NewTool(tools.ToolListTaskComments,
		mcp.WithDescription("List comments on a Teamwork task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to list comments for")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListTaskComments))

	srv.AddTool(mcp.NewTool(tools.ToolAddTaskComment,
		mcp.WithDescription("Add a comment to a Teamwork task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to comment on")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Comment text")),
	), s.instrument(s.handleAddTaskComment))

	srv.AddTool(mcp.NewTool(tools.ToolListTags,
		mcp.WithDescription("List all available Teamwork tags."),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 100)")),
	), s.instrument(s.handleListTags))

	srv.AddTool(mcp.NewTool(tools.ToolAddTagToTask,
		mcp.WithDescription("Add tags to a Teamwork task. Replaces the task's tag set with the given tag IDs."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to tag")),
		mcp.WithArray("tag_ids", mcp.Required(), mcp.Description("Tag IDs to apply"), mcp.Items(map[string]any{"type": "string"})),
	), s.instrument(s.handleAddTagToTask))

	srv.AddTool(mcp.NewTool(tools.ToolListMilestones,
		mcp.WithDescription("List milestones for a Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to list milestones for")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListMilestones))

	srv.AddTool(mcp.NewTool(tools.ToolGetMilestone,
		mcp.WithDescription("Get details of a specific Teamwork milestone."),
		mcp.WithString("milestone_id", mcp.Required(), mcp.Description("Milestone ID to retrieve")),
	), s.instrument(s.handleGetMilestone))

	srv.AddTool(mcp.NewTool(tools.ToolListNotebooks,
		mcp.WithDescription("List notebooks for a Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to list notebooks for")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListNotebooks))

	srv.AddTool(mcp.NewTool(tools.ToolGetNotebook,
		mcp.WithDescription("Get details of a specific Teamwork notebook."),
		mcp.WithString("notebook_id", mcp.Required(), mcp.Description("Notebook ID to retrieve")),
	), s.instrument(s.handleGetNotebook))

	srv.AddTool(mcp.NewTool(tools.ToolListMessages,
		mcp.WithDescription("List messages (posts) for a Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to list messages for")),
		mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
		mcp.WithNumber("page_size", mcp.Description("Number of results per page (default: 50)")),
	), s.instrument(s.handleListMessages))

	srv.AddTool(mcp.NewTool(tools.ToolCreateMessage,
		mcp.WithDescription("Create a new message (post) in a Teamwork project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to post the message in")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Message title")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Message body")),
		mcp.WithString("category_id", mcp.Description("Optional message category ID")),
		mcp.WithBoolean("notify", mcp.Description("Whether to notify project members (default: false)")),
	), s.instrument(s.handleCreateMessage))

	return 12
}

func (s *TeamworkToolServer) handleListPeople(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.ListPeople(ctx,
			request.GetString("project_id", ""),
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetMe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.GetMe(ctx)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListTaskComments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.ListTaskComments(ctx, taskID,
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleAddTaskComment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := request.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.AddTaskComment(ctx, taskID, body)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.ListTags(ctx,
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultTagPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleAddTagToTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tagIDs := request.GetStringSlice("tag_ids", nil)
	if len(tagIDs) == 0 {
		return s.toolError(errortypes.ValidationError(errors.New("empty list"), "tag_ids must contain at least one tag ID")), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.AddTagToTask(ctx, taskID, tagIDs)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListMilestones(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.ListMilestones(ctx, projectID,
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetMilestone(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	milestoneID, err := request.RequireString("milestone_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.GetMilestone(ctx, milestoneID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListNotebooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.ListNotebooks(ctx, projectID,
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleGetNotebook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	notebookID, err := request.RequireString("notebook_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.GetNotebook(ctx, notebookID)
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleListMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.ListMessages(ctx, projectID,
			request.GetInt("page", 1),
			request.GetInt("page_size", tools.DefaultListPageSize))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

func (s *TeamworkToolServer) handleCreateMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, reject := s.clientFor(ctx)
	if reject != nil {
		return reject, nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := request.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.callPeople(func() (any, error) {
		return client.CreateMessage(ctx, projectID, title, body,
			request.GetString("category_id", ""),
			request.GetBool("notify", false))
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return s.jsonResult(resp)
}

// callPeople runs an API call while recording people-resource metrics.
func (s *TeamworkToolServer) callPeople(fn func() (any, error)) (any, error) {
	return s.callAPI(telemetry.MetricAPICallsPeople, fn)
}
