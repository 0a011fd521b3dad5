package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// NotificationService serves the notification inbox.
type NotificationService struct {
	store NotificationStore
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// ListForRecipient returns the caller's notifications, newest first.
// Returns ErrNoNotifications when the inbox is empty.
func (s *NotificationService) ListForRecipient(ctx context.Context, caller *domain.User) ([]*domain.Notification, error) {
	notifications, err := s.store.ListByRecipient(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %s: %w", caller.ID, err)
	}
	if len(notifications) == 0 {
		return nil, domain.ErrNoNotifications
	}
	return notifications, nil
}

// MarkRead flags a notification as read. Marking twice is not an error.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	notification, err := s.store.MarkRead(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	slog.Info("notification marked read", "notification_id", notification.ID)

	return notification, nil
}
