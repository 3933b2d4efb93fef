package teamwork

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
)

// ListPeople lists people, optionally narrowed to a project.
func (c *Client) ListPeople(ctx context.Context, projectID string, page, pageSize int) (map[string]any, error) {
	q := pageParams(page, pageSize)
	if projectID != "" {
		q.Set("projectId", projectID)
	}
	return c.request(ctx, "GET", "/people.json", q, nil)
}

// GetMe returns the authenticated user's record.
func (c *Client) GetMe(ctx context.Context) (map[string]any, error) {
	return c.request(ctx, "GET", "/me.json", nil, nil)
}

// CurrentUserID resolves the authenticated user's ID. The record nests the
// ID under "person" on most installations but some return it at the top
// level, so both are checked.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	me, err := c.GetMe(ctx)
	if err != nil {
		return "", err
	}
	id := asInt(asMap(me["person"])["id"])
	if id == 0 {
		id = asInt(me["id"])
	}
	if id == 0 {
		return "", errortypes.APIError(
			fmt.Errorf("no user id in response"),
			"could not resolve current user")
	}
	return strconv.Itoa(id), nil
}

// ListTaskComments lists the comments on a task.
func (c *Client) ListTaskComments(ctx context.Context, taskID string, page, pageSize int) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/tasks/%s/comments.json", taskID), pageParams(page, pageSize), nil)
}

// AddTaskComment posts a comment on a task.
func (c *Client) AddTaskComment(ctx context.Context, taskID, body string) (map[string]any, error) {
	payload := map[string]any{"comment": map[string]any{"body": body}}
	return c.request(ctx, "POST", fmt.Sprintf("/tasks/%s/comments.json", taskID), nil, payload)
}

// ListTags lists the installation's tags.
func (c *Client) ListTags(ctx context.Context, page, pageSize int) (map[string]any, error) {
	return c.request(ctx, "GET", "/tags.json", pageParams(page, pageSize), nil)
}

// AddTagToTask replaces the tag set on a task with the given tag IDs.
func (c *Client) AddTagToTask(ctx context.Context, taskID string, tagIDs []string) (map[string]any, error) {
	return c.request(ctx, "PUT", fmt.Sprintf("/tasks/%s/tags.json", taskID), nil, map[string]any{"tagIds": tagIDs})
}

// ListMilestones lists the milestones of a project.
func (c *Client) ListMilestones(ctx context.Context, projectID string, page, pageSize int) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/projects/%s/milestones.json", projectID), pageParams(page, pageSize), nil)
}

// GetMilestone returns the full milestone record.
func (c *Client) GetMilestone(ctx context.Context, milestoneID string) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/milestones/%s.json", milestoneID), nil, nil)
}

// ListNotebooks lists the notebooks of a project. Notebooks only have a
// global endpoint in v3, filtered by projectIds.
func (c *Client) ListNotebooks(ctx context.Context, projectID string, page, pageSize int) (map[string]any, error) {
	q := pageParams(page, pageSize)
	q.Set("projectIds", projectID)
	return c.request(ctx, "GET", "/notebooks.json", q, nil)
}

// GetNotebook returns the full notebook record.
func (c *Client) GetNotebook(ctx context.Context, notebookID string) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/notebooks/%s.json", notebookID), nil, nil)
}

// ListMessages lists the messages of a project. Like notebooks, messages
// only have a global endpoint in v3, filtered by projectIds.
func (c *Client) ListMessages(ctx context.Context, projectID string, page, pageSize int) (map[string]any, error) {
	q := pageParams(page, pageSize)
	q.Set("projectIds", projectID)
	return c.request(ctx, "GET", "/messages.json", q, nil)
}

// CreateMessage posts a message in a project.
func (c *Client) CreateMessage(ctx context.Context, projectID, title, body, categoryID string, notify bool) (map[string]any, error) {
	post := map[string]any{
		"title":  title,
		"body":   body,
		"notify": notify,
	}
	if categoryID != "" {
		post["categoryId"] = categoryID
	}
	return c.request(ctx, "POST", fmt.Sprintf("/projects/%s/posts.json", projectID), nil, map[string]any{"post": post})
}
