package service

import (
	"context"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/repository"
)

//go:generate mockgen -source=stores.go -destination=mocks/mocks.go -package=mocks

// UserStore is the identity store used for assignment checks and authentication.
type UserStore interface {
	FindActiveByID(ctx context.Context, userID string) (*domain.User, error)
	FindActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	IsActiveAndNotDeleted(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	SetToken(ctx context.Context, userID string, token *string) error
	ListActive(ctx context.Context) ([]*domain.User, error)
}

// TaskStore persists tasks and produces the joined read projection.
type TaskStore interface {
	GetByID(ctx context.Context, taskID string) (*domain.Task, error)
	GetView(ctx context.Context, taskID string) (*domain.TaskView, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, taskID string) error
	Search(ctx context.Context, filters repository.TaskFilters) ([]*domain.TaskView, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

// NotificationSender delivers assignment notifications. Delivery is best effort
// and never reports failure to the caller.
type NotificationSender interface {
	Notify(ctx context.Context, params NotificationParams)
}
