package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/metrics"
	"github.com/mtlprog/taskdesk/internal/repository"
)

// TaskService coordinates task creation, updates and reassignment notifications.
type TaskService struct {
	tasks     TaskStore
	notifier  NotificationSender
	validator *Validator
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewTaskService creates a new TaskService. m may be nil.
func NewTaskService(
	tasks TaskStore,
	users UserStore,
	notifier NotificationSender,
	m *metrics.Metrics,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		notifier:  notifier,
		validator: NewValidator(users),
		metrics:   m,
		now:       time.Now,
	}
}

// CreateTask creates a task owned by the caller and notifies the assignee.
// A failed notification does not fail the creation.
func (s *TaskService) CreateTask(ctx context.Context, caller *domain.User, params CreateTaskParams) (*domain.TaskView, error) {
	if err := s.validator.ValidateCreate(params); err != nil {
		return nil, err
	}

	if err := s.validator.CheckAssignee(ctx, params.AssignedTo); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, &domain.Task{
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    params.Priority,
		Status:      params.Status,
		CreatedBy:   caller.ID,
		AssignedTo:  params.AssignedTo,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTask(metrics.TaskCreated)
	slog.Info("task created",
		"task_id", task.ID,
		"created_by", caller.ID,
		"assigned_to", task.AssignedTo,
	)

	s.notifier.Notify(ctx, NotificationParams{
		RecipientID: task.AssignedTo,
		SenderID:    caller.ID,
		TaskID:      task.ID,
		Message:     domain.NewTaskMessage(task.Title),
	})

	return s.tasks.GetView(ctx, task.ID)
}

// UpdateTask applies a partial update. The creator and the assignee may change any
// field, including handing the task to a third user, who is then notified.
func (s *TaskService) UpdateTask(ctx context.Context, caller *domain.User, taskID string, patch TaskPatch) (*domain.TaskView, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanUpdate(task, caller); err != nil {
		return nil, err
	}

	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, err
	}

	newAssignee, reassigned := patch.reassignTo(task)
	if reassigned {
		if err := s.validator.CheckAssignee(ctx, newAssignee); err != nil {
			return nil, err
		}
	}

	originalTitle := task.Title
	patch.apply(task)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.metrics.IncTask(metrics.TaskUpdated)
	slog.Info("task updated",
		"task_id", task.ID,
		"user_id", caller.ID,
		"reassigned", reassigned,
	)

	if reassigned {
		s.metrics.IncTask(metrics.TaskReassigned)
		s.notifier.Notify(ctx, NotificationParams{
			RecipientID: newAssignee,
			SenderID:    caller.ID,
			TaskID:      task.ID,
			Message:     domain.ReassignedTaskMessage(originalTitle),
		})
	}

	return s.tasks.GetView(ctx, task.ID)
}

// DeleteTask removes a task. Only its creator may delete it.
func (s *TaskService) DeleteTask(ctx context.Context, caller *domain.User, taskID string) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.validator.CanDelete(task, caller); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	s.metrics.IncTask(metrics.TaskDeleted)
	slog.Info("task deleted", "task_id", taskID, "user_id", caller.ID)

	return nil
}

// GetTask returns a single task with creator and assignee details.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.TaskView, error) {
	return s.tasks.GetView(ctx, taskID)
}

// ListTasks returns every task.
func (s *TaskService) ListTasks(ctx context.Context) ([]*domain.TaskView, error) {
	return s.SearchTasks(ctx, repository.TaskFilters{})
}

// SearchTasks returns the tasks matching all set filters.
func (s *TaskService) SearchTasks(ctx context.Context, filters repository.TaskFilters) ([]*domain.TaskView, error) {
	views, err := s.tasks.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return views, nil
}

// GetDashboard assembles the caller's four task buckets concurrently.
// The first failing query fails the whole dashboard.
func (s *TaskService) GetDashboard(ctx context.Context, caller *domain.User) (*domain.Dashboard, error) {
	defer s.metrics.ObserveDashboard(time.Now())

	callerID := caller.ID
	now := s.now()
	completed := domain.TaskStatusCompleted

	var dashboard domain.Dashboard
	buckets := []struct {
		name    string
		dst     *[]*domain.TaskView
		filters repository.TaskFilters
	}{
		{"assigned", &dashboard.Assigned, repository.TaskFilters{AssignedTo: &callerID}},
		{"created", &dashboard.Created, repository.TaskFilters{CreatedBy: &callerID}},
		{"overdue", &dashboard.Overdue, repository.TaskFilters{AssignedTo: &callerID, OverdueAt: &now}},
		{"completed", &dashboard.Completed, repository.TaskFilters{AssignedTo: &callerID, Status: &completed}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, bucket := range buckets {
		g.Go(func() error {
			views, err := s.tasks.Search(gctx, bucket.filters)
			if err != nil {
				return fmt.Errorf("load %s tasks: %w", bucket.name, err)
			}
			*bucket.dst = views
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard for user %s: %w", callerID, err)
	}

	return &dashboard, nil
}
