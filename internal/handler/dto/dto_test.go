package dto_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
)

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{domain.ErrInvalidStatus, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{domain.ErrTaskNotFound, http.StatusNotFound, "TASK_NOT_FOUND"},
		{fmt.Errorf("%w: u9", domain.ErrAssignedUserNotFound), http.StatusNotFound, "USER_NOT_FOUND"},
		{domain.ErrNoNotifications, http.StatusNotFound, "NOTIFICATION_NOT_FOUND"},
		{fmt.Errorf("%w: nope", domain.ErrPermissionDenied), http.StatusForbidden, "INSUFFICIENT_ACCESS"},
		{domain.ErrNotTaskCreator, http.StatusForbidden, "INSUFFICIENT_ACCESS"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domain.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	}

	for _, tc := range cases {
		status, code, message := dto.MapDomainError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, tc.err.Error(), message)
	}
}

func TestMapDomainError_HidesStorageFailures(t *testing.T) {
	status, code, message := dto.MapDomainError(errors.New("pq: password authentication failed for user admin"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", code)
	assert.NotContains(t, message, "password")
}

func TestValidateStruct(t *testing.T) {
	err := dto.ValidateStruct(dto.CreateTaskRequest{Title: "Ship report", AssignedTo: "u2", Priority: "urgent"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "priority")

	err = dto.ValidateStruct(dto.RegisterRequest{Name: "Ada", Email: "not-an-email", Password: "x"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "email")

	status := "done"
	err = dto.ValidateStruct(dto.UpdateTaskRequest{Status: &status})
	require.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, dto.ValidateStruct(dto.UpdateTaskRequest{}))
	require.NoError(t, dto.ValidateStruct(dto.CreateTaskRequest{Title: "Ship report", AssignedTo: "u2"}))
}

func TestDashboardFromDomain_EmptyBucketsEncodeAsArrays(t *testing.T) {
	resp := dto.DashboardFromDomain(&domain.Dashboard{}, time.Now())

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"assignedTasks":[],"createdTasks":[],"overdueTasks":[],"completedTask":[]}`, string(raw))
}

func TestTaskFromDomain(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	view := &domain.TaskView{
		Task: &domain.Task{
			ID: "t1", Title: "Ship report", DueDate: &due,
			Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusPending,
			CreatedBy: "u1", AssignedTo: "u2",
		},
		Creator:  domain.UserSummary{ID: "u1", Name: "One", Email: "one@example.com"},
		Assignee: domain.UserSummary{ID: "u2", Name: "Two", Email: "two@example.com"},
	}

	resp := dto.TaskFromDomain(view, now)

	assert.True(t, resp.IsOverdue)
	assert.Equal(t, "high", resp.Priority)
	assert.Equal(t, "one@example.com", resp.CreatedBy.Email)
	assert.Equal(t, "Two", resp.AssignedTo.Name)
}
