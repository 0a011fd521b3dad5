package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// dateOnly is accepted alongside RFC3339 for due dates and search bounds.
const dateOnly = "2006-01-02"

// CreateTaskParams is the input of CreateTask. Empty Priority and Status fall back
// to medium and pending.
type CreateTaskParams struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    domain.TaskPriority
	Status      domain.TaskStatus
	AssignedTo  string
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *domain.TaskPriority
	Status      *domain.TaskStatus
	AssignedTo  *string
}

// reassignTo returns the new assignee when the patch moves the task to someone else.
// An empty assignedTo counts as absent.
func (p TaskPatch) reassignTo(task *domain.Task) (string, bool) {
	if p.AssignedTo == nil || *p.AssignedTo == "" || *p.AssignedTo == task.AssignedTo {
		return "", false
	}
	return *p.AssignedTo, true
}

func (p TaskPatch) apply(task *domain.Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.DueDate != nil {
		task.DueDate = p.DueDate
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if assignee, ok := p.reassignTo(task); ok {
		task.AssignedTo = assignee
	}
}

// NotificationParams describes one notification to deliver.
type NotificationParams struct {
	RecipientID string
	SenderID    string
	TaskID      string
	Message     string
}

// ParseDate parses an optional date given as RFC3339 or YYYY-MM-DD.
// An empty string yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %w: %q is not RFC3339 or YYYY-MM-DD", domain.ErrValidation, domain.ErrInvalidDueDate, value)
}
