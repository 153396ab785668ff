package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// ParseTaskStatus validates a raw status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return TaskStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// ParseTaskPriority validates a raw priority string.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return TaskPriority(s), nil
	}
	return "", ErrInvalidPriority
}

// Task represents a unit of tracked work
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatorID   string       `json:"creator_id"`
	AssigneeID  *string      `json:"assignee_id,omitempty"`
	TeamID      *string      `json:"team_id,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new task in TODO status.
func NewTask(title, description string, priority TaskPriority, creatorID string) *Task {
	now := time.Now()
	return &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      TaskStatusTodo,
		Priority:    priority,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransitionStatus moves the task to the given status and maintains the
// completion timestamp invariant: CompletedAt is set exactly when the task
// enters DONE and cleared when it leaves DONE. Transitions between the other
// statuses never touch CompletedAt.
func (t *Task) TransitionStatus(next TaskStatus, now time.Time) {
	prev := t.Status
	t.Status = next

	switch {
	case next == TaskStatusDone && t.CompletedAt == nil:
		ts := now
		t.CompletedAt = &ts
	case prev == TaskStatusDone && next != TaskStatusDone && t.CompletedAt != nil:
		t.CompletedAt = nil
	}
}

// TaskFilter represents filters for listing tasks
type TaskFilter struct {
	Status     *TaskStatus   `json:"status,omitempty"`
	Priority   *TaskPriority `json:"priority,omitempty"`
	CreatorID  *string       `json:"creator_id,omitempty"`
	AssigneeID *string       `json:"assignee_id,omitempty"`
	TeamID     *string       `json:"team_id,omitempty"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
}

// TaskStats aggregates task counts for the dashboard.
type TaskStats struct {
	Total      int                  `json:"total"`
	ByStatus   map[TaskStatus]int   `json:"by_status"`
	ByPriority map[TaskPriority]int `json:"by_priority"`
}
