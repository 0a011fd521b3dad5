package domain

import (
	"fmt"
	"time"
)

// Notification tells a user that something happened to a task.
// RecipientID, SenderID and TaskID are stored as given and are not checked
// against the users or tasks tables.
type Notification struct {
	ID          string
	RecipientID string
	SenderID    string
	TaskID      string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}

// NewTaskMessage is sent to the assignee of a freshly created task.
// The title is embedded verbatim between double quotes.
func NewTaskMessage(title string) string {
	return fmt.Sprintf("You have been assigned a new task: \"%s\"", title)
}

// ReassignedTaskMessage is sent to the new assignee when a task changes hands.
func ReassignedTaskMessage(title string) string {
	return fmt.Sprintf("You have been assigned a task: \"%s\"", title)
}
