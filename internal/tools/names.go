// Package tools defines the tool names and shared defaults
// for the Teamwork MCP server.
package tools

// Tool names registered with the MCP server. They mirror the operations of
// the Teamwork API v3 wrapper, one tool per operation.
const (
	// Projects
	ToolListProjects      = "list_projects"
	ToolGetProject        = "get_project"
	ToolCreateProject     = "create_project"
	ToolUpdateProject     = "update_project"
	ToolArchiveProject    = "archive_project"
	ToolGetProjectSummary = "get_project_summary"

	// Budgets
	ToolGetProjectBudget   = "get_project_budget"
	ToolListProjectBudgets = "list_project_budgets"

	// Time totals / unofficial budgets
	ToolGetProjectTimeTotals  = "get_project_time_totals"
	ToolGetTasklistTimeTotals = "get_tasklist_time_totals"
	ToolGetTaskTimeTotals     = "get_task_time_totals"
	ToolEstimateProjectBudget = "estimate_project_budget"

	// Tasks. The create tool carries a teamwork_ prefix: the plain
	// create_task name collided with another integration's tool at the
	// gateway level.
	ToolListTasks    = "list_tasks"
	ToolGetTask      = "get_task"
	ToolCreateTask   = "create_teamwork_task"
	ToolUpdateTask   = "update_task"
	ToolCompleteTask = "complete_task"
	ToolMoveTask     = "move_task"
	ToolGetMyTasks   = "get_my_tasks"

	// Subtasks
	ToolListSubtasks  = "list_subtasks"
	ToolCreateSubtask = "create_subtask"

	// Task lists
	ToolListTaskLists  = "list_task_lists"
	ToolCreateTaskList = "create_task_list"
	ToolUpdateTaskList = "update_task_list"

	// Time tracking
	ToolLogTime        = "log_time"
	ToolGetTimeEntries = "get_time_entries"

	// Timers
	ToolGetActiveTimer = "get_active_timer"
	ToolStartTimer     = "start_timer"
	ToolStopTimer      = "stop_timer"
	ToolPauseTimer     = "pause_timer"
	ToolResumeTimer    = "resume_timer"
	ToolCancelTimer    = "cancel_timer"

	// People
	ToolListPeople = "list_people"
	ToolGetMe      = "get_me"

	// Comments
	ToolListTaskComments = "list_task_comments"
	ToolAddTaskComment   = "add_task_comment"

	// Tags
	ToolListTags     = "list_tags"
	ToolAddTagToTask = "add_tag_to_task"

	// Milestones
	ToolListMilestones = "list_milestones"
	ToolGetMilestone   = "get_milestone"

	// Notebooks
	ToolListNotebooks = "list_notebooks"
	ToolGetNotebook   = "get_notebook"

	// Messages
	ToolListMessages  = "list_messages"
	ToolCreateMessage = "create_message"
)

// Default pagination sizes, matching the Teamwork API wrapper defaults.
const (
	DefaultProjectPageSize = 25
	DefaultListPageSize    = 50
	DefaultTagPageSize     = 100
	DefaultMyTasksPageSize = 100
)

// DefaultDateFilter is the default due-date window for get_my_tasks.
const DefaultDateFilter = "within7"
