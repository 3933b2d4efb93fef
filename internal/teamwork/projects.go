package teamwork

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dynamic8/teamwork-mcp/internal/errortypes"
)

// ListProjects lists projects with pagination. Unless includeDetails is set,
// each project is reduced to id, name, status and company name to keep
// responses small.
func (c *Client) ListProjects(ctx context.Context, page, pageSize int, includeDetails bool) (map[string]any, error) {
	resp, err := c.request(ctx, "GET", "/projects.json", pageParams(page, pageSize), nil)
	if err != nil {
		return nil, err
	}

	if includeDetails {
		return resp, nil
	}

	projects, _ := resp["projects"].([]any)
	minimal := make([]any, 0, len(projects))
	for _, p := range projects {
		project := asMap(p)
		minimal = append(minimal, map[string]any{
			"id":      project["id"],
			"name":    project["name"],
			"status":  project["status"],
			"company": asMap(project["company"])["name"],
		})
	}

	meta := resp["meta"]
	if meta == nil {
		meta = map[string]any{}
	}
	return map[string]any{
		"projects": minimal,
		"meta":     meta,
	}, nil
}

// GetProject returns the full project record.
func (c *Client) GetProject(ctx context.Context, projectID string) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/projects/%s.json", projectID), nil, nil)
}

// CreateProject creates a project. Optional fields are omitted when empty.
func (c *Client) CreateProject(ctx context.Context, name, description, startDate, endDate string) (map[string]any, error) {
	project := map[string]any{"name": name}
	if description != "" {
		project["description"] = description
	}
	if startDate != "" {
		project["startDate"] = startDate
	}
	if endDate != "" {
		project["endDate"] = endDate
	}
	return c.request(ctx, "POST", "/projects.json", nil, map[string]any{"project": project})
}

// UpdateProject patches a project. At least one field must be set.
func (c *Client) UpdateProject(ctx context.Context, projectID string, upd ProjectUpdate) (map[string]any, error) {
	project := map[string]any{}
	if upd.Name != nil {
		project["name"] = *upd.Name
	}
	if upd.Description != nil {
		project["description"] = *upd.Description
	}
	if upd.Status != nil {
		project["status"] = *upd.Status
	}
	if upd.StartDate != nil {
		project["startDate"] = *upd.StartDate
	}
	if upd.EndDate != nil {
		project["endDate"] = *upd.EndDate
	}
	if len(project) == 0 {
		return nil, errortypes.ValidationError(
			fmt.Errorf("no fields provided"),
			"update_project requires at least one field to update")
	}
	return c.request(ctx, "PATCH", fmt.Sprintf("/projects/%s.json", projectID), nil, map[string]any{"project": project})
}

// ArchiveProject archives a project by setting its status.
func (c *Client) ArchiveProject(ctx context.Context, projectID string) (map[string]any, error) {
	status := "archived"
	return c.UpdateProject(ctx, projectID, ProjectUpdate{Status: &status})
}

// GetProjectSummary builds a concise health summary for a project. It makes
// four API calls: the project record plus three task count queries, relying
// on meta.page.count carrying the total across all pages.
func (c *Client) GetProjectSummary(ctx context.Context, projectID string) (*ProjectSummary, error) {
	resp, err := c.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	totalCount, err := c.taskCount(ctx, projectID, "")
	if err != nil {
		return nil, err
	}
	overdueCount, err := c.taskCount(ctx, projectID, "overdue")
	if err != nil {
		return nil, err
	}
	thisWeekCount, err := c.taskCount(ctx, projectID, "thisweek")
	if err != nil {
		return nil, err
	}

	// At risk when 10%+ of tasks are overdue, or 3 or more are.
	health := "on-track"
	if totalCount > 0 {
		overduePct := float64(overdueCount) / float64(totalCount) * 100
		if overduePct >= 10 || overdueCount >= 3 {
			health = "at-risk"
		}
	}

	project := asMap(resp["project"])
	description := asString(project["description"])
	// Counted in characters, not bytes, so multi-byte text is not cut mid-rune.
	if runes := []rune(description); len(runes) > 200 {
		description = string(runes[:197]) + "..."
	}

	return &ProjectSummary{
		Project: SummaryProject{
			ID:          asInt(project["id"]),
			Name:        asString(project["name"]),
			Status:      asString(project["status"]),
			Description: description,
		},
		TaskStats: TaskStats{
			Total:       totalCount,
			Overdue:     overdueCount,
			DueThisWeek: thisWeekCount,
		},
		Health: health,
	}, nil
}

// taskCount fetches the total task count for a project, optionally narrowed
// by a due-date filter, using a single-item page.
func (c *Client) taskCount(ctx context.Context, projectID, filter string) (int, error) {
	q := url.Values{}
	q.Set("projectId", projectID)
	q.Set("pageSize", "1")
	if filter != "" {
		q.Set("filter", filter)
	}
	resp, err := c.request(ctx, "GET", "/tasks.json", q, nil)
	if err != nil {
		return 0, err
	}
	return metaPageCount(resp), nil
}

// GetProjectBudget returns the full record for a single budget. Budget IDs
// come from financialBudget.id or timeBudget.id on project records.
func (c *Client) GetProjectBudget(ctx context.Context, budgetID string) (map[string]any, error) {
	return c.request(ctx, "GET", fmt.Sprintf("/projects/budgets/%s.json", budgetID), nil, nil)
}

// ListProjectBudgets lists the budgets of a project with flags for which
// budget kinds exist, plus the project name for context.
func (c *Client) ListProjectBudgets(ctx context.Context, projectID string) (map[string]any, error) {
	resp, err := c.request(ctx, "GET", fmt.Sprintf("/projects/%s/budgets.json", projectID), nil, nil)
	if err != nil {
		return nil, err
	}

	budgets, _ := resp["budgets"].([]any)
	hasTime, hasFinancial := false, false
	for _, b := range budgets {
		switch asString(asMap(b)["type"]) {
		case "TIME":
			hasTime = true
		case "FINANCIAL":
			hasFinancial = true
		}
	}
	if budgets == nil {
		budgets = []any{}
	}

	projectName := ""
	if projectResp, err := c.GetProject(ctx, projectID); err == nil {
		projectName = asString(asMap(projectResp["project"])["name"])
	}

	return map[string]any{
		"project_id":           projectID,
		"project_name":         projectName,
		"budgets":              budgets,
		"has_time_budget":      hasTime,
		"has_financial_budget": hasFinancial,
	}, nil
}

// hasOfficialBudget reports whether a project record references a Teamwork
// budget in any of the fields the API exposes them through.
func hasOfficialBudget(project map[string]any) bool {
	for _, key := range []string{"timeBudget", "financialBudget", "timeBudgetId", "financialBudgetId"} {
		if v, ok := project[key]; ok && v != nil {
			// IDs come back as numbers; zero means unset.
			if n, isNum := v.(float64); isNum && n == 0 {
				continue
			}
			return true
		}
	}
	return false
}
