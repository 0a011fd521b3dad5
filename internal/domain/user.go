package domain

import (
	"strings"
	"time"
)

// User is an account in the identity store.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Token        *string
	IsActive     bool
	IsDeleted    bool
	CreatedAt    time.Time
}

// IsUsable reports whether the user may authenticate and receive assignments.
func (u *User) IsUsable() bool {
	return u.IsActive && !u.IsDeleted
}

// Summary returns the public projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the id/name/email projection embedded in task responses.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// NormalizeEmail lower-cases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
