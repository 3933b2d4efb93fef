package teamwork

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
)

// ListTimeEntries lists time entries, optionally narrowed to a project or a
// user.
func (c *Client) ListTimeEntries(ctx context.Context, projectID, userID string, page, pageSize int) (map[string]any, error) {
	q := pageParams(page, pageSize)
	if projectID != "" {
		q.Set("projectId", projectID)
	}
	if userID != "" {
		q.Set("userIds", userID)
	}
	return c.request(ctx, "GET", "/time.json", q, nil)
}

// LogTime records a time entry against a project, optionally linked to a task.
func (c *Client) LogTime(ctx context.Context, entry TimeEntry) (map[string]any, error) {
	timeEntry := map[string]any{
		"projectId":   entry.ProjectID,
		"hours":       entry.Hours,
		"description": entry.Description,
	}
	if entry.Date != "" {
		timeEntry["date"] = entry.Date
	}
	if entry.TaskID != "" {
		timeEntry["taskId"] = entry.TaskID
	}
	return c.request(ctx, "POST", "/timers.json", nil, map[string]any{"timeEntry": timeEntry})
}

// GetProjectTimeTotals aggregates estimated and logged time for a project.
func (c *Client) GetProjectTimeTotals(ctx context.Context, projectID string) (*ProjectTimeTotals, error) {
	resp, err := c.request(ctx, "GET", fmt.Sprintf("/projects/%s/time/total.json", projectID), nil, nil)
	if err != nil {
		return nil, err
	}
	return &ProjectTimeTotals{
		ProjectID:  projectID,
		TimeTotals: timeTotalsFrom(resp, "project", "projects"),
	}, nil
}

// GetTasklistTimeTotals aggregates estimated and logged time for a task list.
func (c *Client) GetTasklistTimeTotals(ctx context.Context, tasklistID string) (*TasklistTimeTotals, error) {
	resp, err := c.request(ctx, "GET", fmt.Sprintf("/tasklists/%s/time/total.json", tasklistID), nil, nil)
	if err != nil {
		return nil, err
	}
	return &TasklistTimeTotals{
		TasklistID: tasklistID,
		TimeTotals: timeTotalsFrom(resp, "tasklist", "tasklists"),
	}, nil
}

// GetTaskTimeTotals returns estimated and logged time for a single task.
func (c *Client) GetTaskTimeTotals(ctx context.Context, taskID string) (*TaskTimeTotals, error) {
	resp, err := c.request(ctx, "GET", fmt.Sprintf("/tasks/%s/time/total.json", taskID), nil, nil)
	if err != nil {
		return nil, err
	}
	return &TaskTimeTotals{
		TaskID:     taskID,
		TimeTotals: timeTotalsFrom(resp, "task", "tasks"),
	}, nil
}

// timeTotalsFrom extracts the timeTotals block from a time/total response.
// The API nests it under a singular key for single-entity endpoints and an
// array for collection variants, so both shapes are handled.
func timeTotalsFrom(resp map[string]any, singular, plural string) TimeTotals {
	entity := asMap(resp[singular])
	if len(entity) == 0 {
		if items, ok := resp[plural].([]any); ok && len(items) > 0 {
			entity = asMap(items[0])
		}
	}

	totals := asMap(entity["timeTotals"])
	estimated := asInt(totals["estimatedMinutes"])
	logged := asInt(totals["minutes"])

	return TimeTotals{
		EstimatedMinutes: estimated,
		Minutes:          logged,
		RemainingMinutes: estimated - logged,
		IsOverBudget:     logged > estimated,
	}
}

// EstimateProjectBudget builds an unofficial budget for a project from its
// task time estimates and logged hours. Useful on plans where official
// budgets are limited.
func (c *Client) EstimateProjectBudget(ctx context.Context, projectID string) (*BudgetEstimate, error) {
	projectResp, err := c.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project := asMap(projectResp["project"])

	totals, err := c.GetProjectTimeTotals(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var percentUsed *float64
	if totals.EstimatedMinutes > 0 {
		pct := float64(totals.Minutes) / float64(totals.EstimatedMinutes) * 100
		percentUsed = &pct
	}

	return &BudgetEstimate{
		ProjectID:         projectID,
		ProjectName:       asString(project["name"]),
		BudgetType:        "estimated",
		BudgetMinutes:     totals.EstimatedMinutes,
		UsedMinutes:       totals.Minutes,
		RemainingMinutes:  totals.RemainingMinutes,
		PercentUsed:       percentUsed,
		IsOverBudget:      totals.IsOverBudget,
		HasOfficialBudget: hasOfficialBudget(project),
	}, nil
}

// GetActiveTimer returns the current user's timers.
func (c *Client) GetActiveTimer(ctx context.Context) (map[string]any, error) {
	return c.request(ctx, "GET", "/me/timers.json", nil, nil)
}

// StartTimer starts a timer, optionally bound to a project and task. Only
// one timer can be active per task, and only one project-level timer at a
// time.
func (c *Client) StartTimer(ctx context.Context, ts TimerStart) (map[string]any, error) {
	timer := map[string]any{}
	if ts.ProjectID != "" {
		id, err := strconv.Atoi(ts.ProjectID)
		if err != nil {
			return nil, errortypes.ValidationError(err, "project_id must be numeric")
		}
		timer["projectId"] = id
	}
	if ts.TaskID != "" {
		id, err := strconv.Atoi(ts.TaskID)
		if err != nil {
			return nil, errortypes.ValidationError(err, "task_id must be numeric")
		}
		timer["taskId"] = id
	}
	if ts.Description != "" {
		timer["description"] = ts.Description
	}
	// Billable is the API default; only send the flag when turning it off.
	if !ts.IsBillable {
		timer["isBillable"] = false
	}
	return c.request(ctx, "POST", "/me/timers.json", nil, map[string]any{"timer": timer})
}

// StopTimer completes a timer and logs its time. Description and billable
// status can be amended while stopping.
func (c *Client) StopTimer(ctx context.Context, timerID string, description *string, isBillable *bool) (map[string]any, error) {
	timer := map[string]any{}
	if description != nil {
		timer["description"] = *description
	}
	if isBillable != nil {
		timer["isBillable"] = *isBillable
	}
	return c.request(ctx, "PUT", fmt.Sprintf("/me/timers/%s/complete.json", timerID), nil, map[string]any{"timer": timer})
}

// PauseTimer pauses a running timer.
func (c *Client) PauseTimer(ctx context.Context, timerID string) (map[string]any, error) {
	return c.request(ctx, "PUT", fmt.Sprintf("/me/timers/%s/pause.json", timerID), nil, nil)
}

// ResumeTimer resumes a paused timer.
func (c *Client) ResumeTimer(ctx context.Context, timerID string) (map[string]any, error) {
	return c.request(ctx, "PUT", fmt.Sprintf("/me/timers/%s/resume.json", timerID), nil, nil)
}

// CancelTimer deletes a timer without logging its time.
func (c *Client) CancelTimer(ctx context.Context, timerID string) (map[string]any, error) {
	return c.request(ctx, "DELETE", fmt.Sprintf("/me/timers/%s.json", timerID), nil, nil)
}
