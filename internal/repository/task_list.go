package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// TaskFilters holds all supported filters for task search. Every field is optional
// and set fields are combined with AND.
type TaskFilters struct {
	Search      string               // case-insensitive substring of title OR description
	Status      *domain.TaskStatus   // exact match
	Priority    *domain.TaskPriority // exact match
	DueDateFrom *time.Time           // due_date >= DueDateFrom
	DueDateTo   *time.Time           // due_date <= DueDateTo
	CreatedBy   *string
	AssignedTo  *string
	OverdueAt   *time.Time // due_date < OverdueAt and not completed
}

// apply adds the WHERE clauses for the set filters.
func (f TaskFilters) apply(qb sq.SelectBuilder) sq.SelectBuilder {
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := containsPattern(search)
		qb = qb.Where(sq.Or{
			sq.ILike{"t.title": pattern},
			sq.ILike{"t.description": pattern},
		})
	}

	if f.Status != nil {
		qb = qb.Where(sq.Eq{"t.status": *f.Status})
	}

	if f.Priority != nil {
		qb = qb.Where(sq.Eq{"t.priority": *f.Priority})
	}

	if f.DueDateFrom != nil {
		qb = qb.Where(sq.GtOrEq{"t.due_date": *f.DueDateFrom})
	}
	if f.DueDateTo != nil {
		qb = qb.Where(sq.LtOrEq{"t.due_date": *f.DueDateTo})
	}

	if f.CreatedBy != nil {
		qb = qb.Where(sq.Eq{"t.created_by": *f.CreatedBy})
	}
	if f.AssignedTo != nil {
		qb = qb.Where(sq.Eq{"t.assigned_to": *f.AssignedTo})
	}

	if f.OverdueAt != nil {
		qb = qb.Where(sq.Lt{"t.due_date": *f.OverdueAt}).
			Where(sq.NotEq{"t.status": domain.TaskStatusCompleted})
	}

	return qb
}

// Search retrieves task projections matching the filters.
// Results are newest first; callers must not depend on the order.
func (r *TaskRepository) Search(ctx context.Context, filters TaskFilters) ([]*domain.TaskView, error) {
	query, args, err := filters.apply(selectTaskViews()).
		OrderBy("t.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Search query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	return scanTaskViews(rows)
}
