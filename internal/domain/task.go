package domain

import "time"

// TaskStatus represents the progress state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a unit of work created by one user and assigned to another (or the same) user.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Priority    TaskPriority
	Status      TaskStatus
	CreatedBy   string
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCreatedBy checks if the task was created by the given user.
func (t *Task) IsCreatedBy(userID string) bool {
	return t.CreatedBy == userID
}

// IsAssignedTo checks if the task is currently assigned to the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssignedTo == userID
}

// IsOverdue reports whether the due date has passed and the task is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusCompleted
}

// TaskView is a task joined with the display fields of its creator and assignee.
// It is assembled at read time and never stored.
type TaskView struct {
	Task     *Task
	Creator  UserSummary
	Assignee UserSummary
}

// Dashboard groups the caller's tasks into the four buckets shown on the dashboard.
type Dashboard struct {
	Assigned  []*TaskView
	Created   []*TaskView
	Overdue   []*TaskView
	Completed []*TaskView
}
