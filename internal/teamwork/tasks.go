package teamwork

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
)

// ListTasks lists tasks, optionally narrowed to a project.
func (c *Client) ListTasks(ctx context.Context, projectID string, page, pageSize int) (map[string]any, error) {
	q := pageParams(page, pageSize)
	if projectID != "" {
		q.Set("projectId", projectID)
	}
	return c.request(ctx, "GET", "/tasks.json", q, nil)
}

// GetTask returns the full task record.
func (c *Client) GetTask(ctx context.Context, taskID string) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/tasks/%s.json", taskID), nil, nil)
}

// CreateTask creates a task in the given task list.
func (c *Client) CreateTask(ctx context.Context, tc TaskCreate) (map[string]any, error) {
	tasklistID, err := strconv.Atoi(tc.TasklistID)
	if err != nil {
		return nil, errortypes.ValidationError(err, "tasklist_id must be numeric")
	}

	task := map[string]any{
		"name":       tc.Name,
		"tasklistId": tasklistID,
	}
	if tc.Description != "" {
		task["description"] = tc.Description
	}
	if tc.DueDate != "" {
		task["dueDate"] = tc.DueDate
	}
	if len(tc.AssigneeIDs) > 0 {
		task["assigneeIds"] = tc.AssigneeIDs
	}
	if tc.Priority != "" {
		task["priority"] = tc.Priority
	}
	if tc.EstimatedMinutes != nil {
		if *tc.EstimatedMinutes <= 0 {
			return nil, errortypes.ValidationError(
				fmt.Errorf("got %d", *tc.EstimatedMinutes),
				"estimated_minutes must be a positive value")
		}
		task["estimatedMinutes"] = *tc.EstimatedMinutes
	}
	if tc.Progress != nil {
		if *tc.Progress < 0 || *tc.Progress > 100 {
			return nil, errortypes.ValidationError(
				fmt.Errorf("got %d", *tc.Progress),
				"progress must be between 0 and 100")
		}
		task["progress"] = *tc.Progress
	}

	return c.request(ctx, "POST", fmt.Sprintf("/tasklists/%s/tasks.json", tc.TasklistID), nil, map[string]any{"task": task})
}

// UpdateTask patches a task. Nil fields are left unchanged.
func (c *Client) UpdateTask(ctx context.Context, taskID string, upd TaskUpdate) (map[string]any, error) {
	task := map[string]any{}
	if upd.Name != nil {
		task["name"] = *upd.Name
	}
	if upd.Description != nil {
		task["description"] = *upd.Description
	}
	if upd.Completed != nil {
		task["completed"] = *upd.Completed
	}
	if upd.DueDate != nil {
		task["dueDate"] = *upd.DueDate
	}
	if upd.Priority != nil {
		task["priority"] = *upd.Priority
	}
	if upd.EstimatedMinutes != nil {
		if *upd.EstimatedMinutes <= 0 {
			return nil, errortypes.ValidationError(
				fmt.Errorf("got %d", *upd.EstimatedMinutes),
				"estimated_minutes must be a positive value")
		}
		task["estimatedMinutes"] = *upd.EstimatedMinutes
	}
	if upd.Progress != nil {
		if *upd.Progress < 0 || *upd.Progress > 100 {
			return nil, errortypes.ValidationError(
				fmt.Errorf("got %d", *upd.Progress),
				"progress must be between 0 and 100")
		}
		task["progress"] = *upd.Progress
	}

	return c.request(ctx, "PATCH", fmt.Sprintf("/tasks/%s.json", taskID), nil, map[string]any{"task": task})
}

// CompleteTask marks a task as completed.
func (c *Client) CompleteTask(ctx context.Context, taskID string) (map[string]any, error) {
	completed := true
	return c.UpdateTask(ctx, taskID, TaskUpdate{Completed: &completed})
}

// MoveTask moves a task to another task list, optionally across projects.
func (c *Client) MoveTask(ctx context.Context, taskID, targetTasklistID, targetProjectID string) (map[string]any, error) {
	task := map[string]any{"taskListId": targetTasklistID}
	if targetProjectID != "" {
		task["projectId"] = targetProjectID
	}
	return c.request(ctx, "PATCH", fmt.Sprintf("/tasks/%s.json", taskID), nil, map[string]any{"task": task})
}

// GetMyTasks returns tasks assigned to a user within a due-date window.
// dateFilter is one of overdue, today, thisweek, within7, within14, within30.
func (c *Client) GetMyTasks(ctx context.Context, userID, dateFilter string, includeCompleted bool, pageSize int) (map[string]any, error) {
	q := url.Values{}
	q.Set("responsiblePartyIds", userID)
	q.Set("filter", dateFilter)
	q.Set("pageSize", strconv.Itoa(pageSize))
	// The API requires includeCompletedTasks to be set explicitly.
	q.Set("includeCompletedTasks", strconv.FormatBool(includeCompleted))
	return c.request(ctx, "GET", "/tasks.json", q, nil)
}

// ListSubtasks lists the subtasks of a task.
func (c *Client) ListSubtasks(ctx context.Context, taskID string, page, pageSize int) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/tasks/%s/subtasks.json", taskID), pageParams(page, pageSize), nil)
}

// CreateSubtask creates a task under a parent task.
func (c *Client) CreateSubtask(ctx context.Context, parentTaskID, name, description string, assigneeIDs []string) (map[string]any, error) {
	task := map[string]any{
		"name":         name,
		"parentTaskId": parentTaskID,
	}
	if description != "" {
		task["description"] = description
	}
	if len(assigneeIDs) > 0 {
		task["assigneeIds"] = assigneeIDs
	}
	return c.request(ctx, "POST", "/tasks.json", nil, map[string]any{"task": task})
}

// ListTaskLists lists the task lists of a project.
func (c *Client) ListTaskLists(ctx context.Context, projectID string, page, pageSize int) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/projects/%s/tasklists.json", projectID), pageParams(page, pageSize), nil)
}

// CreateTaskList creates a task list in a project. Task list creation is not
// fully supported in v3, so this goes through the v1 endpoint with its
// "todo-list" payload key.
func (c *Client) CreateTaskList(ctx context.Context, projectID, name, description string) (map[string]any, error) {
	todoList := map[string]any{"name": name}
	if description != "" {
		todoList["description"] = description
	}
	return c.requestV1(ctx, "POST", fmt.Sprintf("/projects/%s/tasklists.json", projectID), nil, map[string]any{"todo-list": todoList})
}

// UpdateTaskList updates a task list's name or description through the v1
// endpoint. At least one of the two must be provided.
func (c *Client) UpdateTaskList(ctx context.Context, tasklistID string, name, description *string) (map[string]any, error) {
	if name == nil && description == nil {
		return nil, errortypes.ValidationError(
			fmt.Errorf("no fields provided"),
			"update_task_list requires at least one of 'name' or 'description'")
	}
	todoList := map[string]any{}
	if name != nil {
		todoList["name"] = *name
	}
	if description != nil {
		todoList["description"] = *description
	}
	return c.requestV1(ctx, "PUT", fmt.Sprintf("/tasklists/%s.json", tasklistID), nil, map[string]any{"todo-list": todoList})
}
