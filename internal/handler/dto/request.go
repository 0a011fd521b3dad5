package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// Validate checks request bodies against their validate tags.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs the validate tags and reports failures as ErrValidation.
func ValidateStruct(req any) error {
	err := Validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
}

// RegisterRequest represents the request body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest represents the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate,omitempty"`
	Priority    string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress completed"`
	AssignedTo  string  `json:"assignedTo" validate:"required"`
}

// UpdateTaskRequest represents the request body for PUT /tasks/{id}.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress completed"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
}

// SearchTasksQuery holds the query parameters of GET /tasks/search.
type SearchTasksQuery struct {
	Search      string
	Status      string `validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string `validate:"omitempty,oneof=low medium high"`
	DueDateFrom string
	DueDateTo   string
}
