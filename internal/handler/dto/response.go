package dto

import (
	"time"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// UserSummary is the id/name/email projection of a user embedded in task responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse represents a user account.
type UserResponse struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse is a user together with a freshly issued access token.
type LoginResponse struct {
	UserResponse
	Token string `json:"token"`
}

// TaskResponse represents a task with its creator and assignee.
type TaskResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DueDate     *time.Time  `json:"dueDate"`
	Priority    string      `json:"priority"`
	Status      string      `json:"status"`
	CreatedBy   UserSummary `json:"createdBy"`
	AssignedTo  UserSummary `json:"assignedTo"`
	IsOverdue   bool        `json:"isOverdue"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// DashboardResponse represents the response for GET /tasks/dashboard.
type DashboardResponse struct {
	AssignedTasks []TaskResponse `json:"assignedTasks"`
	CreatedTasks  []TaskResponse `json:"createdTasks"`
	OverdueTasks  []TaskResponse `json:"overdueTasks"`
	CompletedTask []TaskResponse `json:"completedTask"`
}

// NotificationResponse represents a notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Sender    string    `json:"sender"`
	Task      string    `json:"task"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarkReadResponse represents the response for GET /notifications/{id}/read.
type MarkReadResponse struct {
	Message             string               `json:"message"`
	UpdatedNotification NotificationResponse `json:"updatedNotification"`
}

// SuccessResponse acknowledges an operation without a body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse represents the response for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// UserFromDomain converts a domain user to its response form.
func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
	}
}

// UsersFromDomain converts a list of users.
func UsersFromDomain(users []*domain.User) []UserResponse {
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserFromDomain(u))
	}
	return resp
}

func summaryFromDomain(s domain.UserSummary) UserSummary {
	return UserSummary{ID: s.ID, Name: s.Name, Email: s.Email}
}

// TaskFromDomain converts a task projection to its response form.
func TaskFromDomain(view *domain.TaskView, now time.Time) TaskResponse {
	t := view.Task
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedBy:   summaryFromDomain(view.Creator),
		AssignedTo:  summaryFromDomain(view.Assignee),
		IsOverdue:   t.IsOverdue(now),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TasksFromDomain converts a list of task projections. The result is never nil.
func TasksFromDomain(views []*domain.TaskView, now time.Time) []TaskResponse {
	resp := make([]TaskResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, TaskFromDomain(v, now))
	}
	return resp
}

// DashboardFromDomain converts the four dashboard buckets.
func DashboardFromDomain(d *domain.Dashboard, now time.Time) DashboardResponse {
	return DashboardResponse{
		AssignedTasks: TasksFromDomain(d.Assigned, now),
		CreatedTasks:  TasksFromDomain(d.Created, now),
		OverdueTasks:  TasksFromDomain(d.Overdue, now),
		CompletedTask: TasksFromDomain(d.Completed, now),
	}
}

// NotificationFromDomain converts a notification to its response form.
func NotificationFromDomain(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Recipient: n.RecipientID,
		Sender:    n.SenderID,
		Task:      n.TaskID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationsFromDomain converts a list of notifications.
func NotificationsFromDomain(notifications []*domain.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, NotificationFromDomain(n))
	}
	return resp
}
