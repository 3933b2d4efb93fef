package teamwork

// SummaryProject is the trimmed project block of a ProjectSummary.
type SummaryProject struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// TaskStats holds the task counts of a ProjectSummary.
type TaskStats struct {
	Total       int `json:"total"`
	Overdue     int `json:"overdue"`
	DueThisWeek int `json:"dueThisWeek"`
}

// ProjectSummary is a concise project health report assembled from the
// project record and three task count queries.
type ProjectSummary struct {
	Project   SummaryProject `json:"project"`
	TaskStats TaskStats      `json:"taskStats"`
	Health    string         `json:"health"`
}

// TimeTotals aggregates estimated versus logged time. Estimates act as an
// unofficial budget when a project has no Teamwork budget configured.
type TimeTotals struct {
	EstimatedMinutes int  `json:"estimated_minutes"`
	Minutes          int  `json:"minutes"`
	RemainingMinutes int  `json:"remaining_minutes"`
	IsOverBudget     bool `json:"is_over_budget"`
}

// ProjectTimeTotals is the time totals report for a whole project.
type ProjectTimeTotals struct {
	ProjectID string `json:"project_id"`
	TimeTotals
}

// TasklistTimeTotals is the time totals report for a task list.
type TasklistTimeTotals struct {
	TasklistID string `json:"tasklist_id"`
	TimeTotals
}

// TaskTimeTotals is the time totals report for a single task.
type TaskTimeTotals struct {
	TaskID string `json:"task_id"`
	TimeTotals
}

// BudgetEstimate is an unofficial budget built from task time estimates,
// for projects without an official Teamwork budget.
type BudgetEstimate struct {
	ProjectID         string   `json:"project_id"`
	ProjectName       string   `json:"project_name"`
	BudgetType        string   `json:"budget_type"`
	BudgetMinutes     int      `json:"budget_minutes"`
	UsedMinutes       int      `json:"used_minutes"`
	RemainingMinutes  int      `json:"remaining_minutes"`
	PercentUsed       *float64 `json:"percent_used"`
	IsOverBudget      bool     `json:"is_over_budget"`
	HasOfficialBudget bool     `json:"has_official_budget"`
}

// TaskCreate holds the fields for creating a task. Zero values are omitted
// from the request payload; EstimatedMinutes and Progress use pointers so
// an explicit zero can be validated.
type TaskCreate struct {
	Name             string
	TasklistID       string
	Description      string
	DueDate          string
	AssigneeIDs      []string
	Priority         string
	EstimatedMinutes *int
	Progress         *int
}

// TaskUpdate holds the fields for updating a task. Nil pointers are left
// out of the request so existing values are preserved.
type TaskUpdate struct {
	Name             *string
	Description      *string
	Completed        *bool
	DueDate          *string
	Priority         *string
	EstimatedMinutes *int
	Progress         *int
}

// ProjectUpdate holds the fields for updating a project.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *string
	EndDate     *string
}

// TimeEntry holds the fields for logging time against a project.
type TimeEntry struct {
	ProjectID   string
	Hours       float64
	Description string
	Date        string
	TaskID      string
}

// TimerStart holds the fields for starting a timer.
type TimerStart struct {
	ProjectID   string
	TaskID      string
	Description string
	IsBillable  bool
}
