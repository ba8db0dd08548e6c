package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus enumerates lifecycle states for tasks.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every status; switches over TaskStatus are tested against it.
var TaskStatuses = [...]TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status marks the task as completed.
// Unknown statuses, e.g. from a bad stored row, are not terminal.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusDone:
		return true
	case TaskStatusTodo, TaskStatusInProgress:
		return false
	default:
		return false
	}
}

// ParseTaskStatus accepts any letter case.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", raw)
	}
	return s, nil
}

// TaskPriority enumerates urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// TaskPriorities lists every priority.
var TaskPriorities = [...]TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// ParseTaskPriority accepts any letter case.
func ParseTaskPriority(raw string) (TaskPriority, error) {
	p := TaskPriority(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown task priority %q", raw)
	}
	return p, nil
}

// Task is a unit of work owned by exactly one principal.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// OwnedBy reports whether the principal owns the task.
func (t *Task) OwnedBy(principalID string) bool {
	return t.OwnerID == principalID
}

// TransitionTo sets the status and keeps CompletedAt consistent with it:
// entering DONE stamps now, leaving DONE clears the stamp.
func (t *Task) TransitionTo(next TaskStatus, now time.Time) {
	wasDone := t.Status != "" && t.Status.IsTerminal()
	isDone := next.IsTerminal()
	switch {
	case isDone && !wasDone:
		completed := now
		t.CompletedAt = &completed
	case !isDone:
		t.CompletedAt = nil
	}
	t.Status = next
}

// CompletionDuration returns the time from creation to completion, if both are known.
func (t *Task) CompletionDuration() (time.Duration, bool) {
	if t.CompletedAt == nil || t.CreatedAt.IsZero() {
		return 0, false
	}
	return t.CompletedAt.Sub(t.CreatedAt), true
}
