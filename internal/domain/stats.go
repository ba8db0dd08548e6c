package domain

// TaskStats aggregates a principal's tasks.
type TaskStats struct {
	TotalTasks                 int64   `json:"total_tasks"`
	CompletedTasks             int64   `json:"completed_tasks"`
	PendingTasks               int64   `json:"pending_tasks"`
	AverageCompletionTimeHours float64 `json:"average_completion_time_hours"`
	TodoTasks                  int64   `json:"todo_tasks"`
	InProgressTasks            int64   `json:"in_progress_tasks"`
}

// TaskSuggestion is advisory output describing a task the caller might create.
type TaskSuggestion struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
}
