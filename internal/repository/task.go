package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// taskColumns is the shared list of columns for plain task queries.
var taskColumns = []string{
	"id", "title", "description", "due_date", "priority", "status",
	"created_by", "assigned_to", "created_at", "updated_at",
}

// taskViewColumns selects a task together with creator and assignee display fields.
var taskViewColumns = []string{
	"t.id", "t.title", "t.description", "t.due_date", "t.priority", "t.status",
	"t.created_by", "t.assigned_to", "t.created_at", "t.updated_at",
	"c.name", "c.email", "a.name", "a.email",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Status,
		&task.CreatedBy,
		&task.AssignedTo,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTaskView scans a row selected with taskViewColumns.
func scanTaskView(row pgx.Row) (*domain.TaskView, error) {
	var task domain.Task
	view := domain.TaskView{Task: &task}
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Status,
		&task.CreatedBy,
		&task.AssignedTo,
		&task.CreatedAt,
		&task.UpdatedAt,
		&view.Creator.Name,
		&view.Creator.Email,
		&view.Assignee.Name,
		&view.Assignee.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task view: %w", err)
	}
	view.Creator.ID = task.CreatedBy
	view.Assignee.ID = task.AssignedTo
	return &view, nil
}

// scanTaskViews scans multiple rows into a slice of TaskView.
// The result is never nil so empty buckets encode as [].
func scanTaskViews(rows pgx.Rows) ([]*domain.TaskView, error) {
	defer rows.Close()

	views := []*domain.TaskView{}
	for rows.Next() {
		view, err := scanTaskView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return views, nil
}

// selectTaskViews is the base query for every projection read.
func selectTaskViews() sq.SelectBuilder {
	return psql.
		Select(taskViewColumns...).
		From("tasks t").
		Join("users c ON c.id = t.created_by").
		Join("users a ON a.id = t.assigned_to")
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetView retrieves a task joined with its creator and assignee.
func (r *TaskRepository) GetView(ctx context.Context, taskID string) (*domain.TaskView, error) {
	query, args, err := selectTaskViews().
		Where(sq.Eq{"t.id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetView query for task %s: %w", taskID, err)
	}

	return scanTaskView(r.pool.QueryRow(ctx, query, args...))
}

// Create inserts a new task.
// Returns the created task with ID, CreatedAt, and UpdatedAt populated.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"title", "description", "due_date", "priority", "status",
			"created_by", "assigned_to",
		).
		Values(
			task.Title,
			task.Description,
			task.DueDate,
			task.Priority,
			task.Status,
			task.CreatedBy,
			task.AssignedTo,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// Update writes every mutable field of the task. The creator is never touched.
// Returns ErrTaskNotFound if the row disappeared since it was read.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query, args, err := psql.
		Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("due_date", task.DueDate).
		Set("priority", task.Priority).
		Set("status", task.Status).
		Set("assigned_to", task.AssignedTo).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": task.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for task %s: %w", task.ID, err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

// Delete removes a task. Notifications that reference it are left in place.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}
