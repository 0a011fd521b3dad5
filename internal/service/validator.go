package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// Validator handles permission and input validation for task operations.
type Validator struct {
	users UserStore
}

// NewValidator creates a new Validator.
func NewValidator(users UserStore) *Validator {
	return &Validator{
		users: users,
	}
}

// CanUpdate validates if the caller can modify a task.
// The creator and the current assignee both may.
func (v *Validator) CanUpdate(task *domain.Task, caller *domain.User) error {
	if task.IsCreatedBy(caller.ID) || task.IsAssignedTo(caller.ID) {
		return nil
	}
	return fmt.Errorf("%w: user %s is neither creator nor assignee of task %s", domain.ErrPermissionDenied, caller.ID, task.ID)
}

// CanDelete validates if the caller can delete a task. Only the creator may.
func (v *Validator) CanDelete(task *domain.Task, caller *domain.User) error {
	if task.IsCreatedBy(caller.ID) {
		return nil
	}
	return fmt.Errorf("%w: user %s cannot delete task %s", domain.ErrNotTaskCreator, caller.ID, task.ID)
}

// ValidateCreate checks the fields of a new task.
func (v *Validator) ValidateCreate(params CreateTaskParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(params.AssignedTo) == "" {
		return fmt.Errorf("%w: assignedTo is required", domain.ErrValidation)
	}
	if params.Priority != "" && !params.Priority.IsValid() {
		return fmt.Errorf("%w: %w: %q", domain.ErrValidation, domain.ErrInvalidPriority, params.Priority)
	}
	if params.Status != "" && !params.Status.IsValid() {
		return fmt.Errorf("%w: %w: %q", domain.ErrValidation, domain.ErrInvalidStatus, params.Status)
	}
	return nil
}

// ValidatePatch checks the set fields of a partial update.
func (v *Validator) ValidatePatch(patch TaskPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fmt.Errorf("%w: title cannot be blank", domain.ErrValidation)
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return fmt.Errorf("%w: %w: %q", domain.ErrValidation, domain.ErrInvalidPriority, *patch.Priority)
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return fmt.Errorf("%w: %w: %q", domain.ErrValidation, domain.ErrInvalidStatus, *patch.Status)
	}
	return nil
}

// CheckAssignee verifies that the user exists, is active and is not deleted.
func (v *Validator) CheckAssignee(ctx context.Context, userID string) error {
	ok, err := v.users.IsActiveAndNotDeleted(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrAssignedUserNotFound, userID)
		}
		return fmt.Errorf("check assignee %s: %w", userID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAssignedUserNotFound, userID)
	}
	return nil
}
