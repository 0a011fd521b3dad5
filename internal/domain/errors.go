package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound = errors.New("task not found")

	// Permission errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotTaskCreator   = errors.New("not task creator")

	// User errors
	ErrUserNotFound         = errors.New("user not found")
	ErrAssignedUserNotFound = errors.New("assigned user not found")
	ErrUserInactive         = errors.New("user is inactive")
	ErrEmailTaken           = errors.New("user already exists")
	ErrNoActiveUsers        = errors.New("no active users found")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid authentication token")
	ErrTokenRevoked       = errors.New("token has been revoked")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoNotifications      = errors.New("no active notifications found")

	// Validation errors
	ErrValidation      = errors.New("validation failed")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidDueDate  = errors.New("invalid due date")
)
