package handler

import (
	"net/http"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
	"github.com/mtlprog/taskdesk/internal/middleware"
	"github.com/mtlprog/taskdesk/internal/repository"
	"github.com/mtlprog/taskdesk/internal/service"
)

// currentUser extracts the authenticated user.
// Returns false if missing (error already sent to client).
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, err := middleware.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return nil, false
	}
	return user, true
}

// handleListTasks lists every task.
// @Summary List all tasks
// @Tags tasks
// @Produce json
// @Success 200 {array} dto.TaskResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	views, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TasksFromDomain(views, h.now()))
}

// handleDashboard returns the caller's assigned, created, overdue and completed tasks.
// @Summary Task dashboard
// @Description Tasks assigned to and created by the caller, plus the overdue and completed subsets of assigned tasks.
// @Tags tasks
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/dashboard [get]
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	dashboard, err := h.taskService.GetDashboard(r.Context(), user)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.DashboardFromDomain(dashboard, h.now()))
}

// handleSearchTasks searches tasks.
// @Summary Search tasks
// @Description All parameters are optional and combined with AND. Dates accept RFC3339 or YYYY-MM-DD.
// @Tags tasks
// @Produce json
// @Param search query string false "Case-insensitive substring of title or description"
// @Param status query string false "pending, in-progress or completed"
// @Param priority query string false "low, medium or high"
// @Param dueDateFrom query string false "Due on or after"
// @Param dueDateTo query string false "Due on or before"
// @Success 200 {array} dto.TaskResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/search [get]
func (h *Handler) handleSearchTasks(w http.ResponseWriter, r *http.Request) {
	filters, err := parseSearchQuery(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views, err := h.taskService.SearchTasks(r.Context(), filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TasksFromDomain(views, h.now()))
}

func parseSearchQuery(r *http.Request) (repository.TaskFilters, error) {
	q := r.URL.Query()
	query := dto.SearchTasksQuery{
		Search:      q.Get("search"),
		Status:      q.Get("status"),
		Priority:    q.Get("priority"),
		DueDateFrom: q.Get("dueDateFrom"),
		DueDateTo:   q.Get("dueDateTo"),
	}
	if err := dto.ValidateStruct(query); err != nil {
		return repository.TaskFilters{}, err
	}

	filters := repository.TaskFilters{Search: query.Search}
	if query.Status != "" {
		status := domain.TaskStatus(query.Status)
		filters.Status = &status
	}
	if query.Priority != "" {
		priority := domain.TaskPriority(query.Priority)
		filters.Priority = &priority
	}

	var err error
	if filters.DueDateFrom, err = service.ParseDate(query.DueDateFrom); err != nil {
		return repository.TaskFilters{}, err
	}
	if filters.DueDateTo, err = service.ParseDate(query.DueDateTo); err != nil {
		return repository.TaskFilters{}, err
	}

	return filters, nil
}

// handleGetTask returns a single task.
// @Summary Get task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	view, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TaskFromDomain(view, h.now()))
}

// handleCreateTask creates a new task owned by the caller.
// @Summary Create a new task
// @Description Creates a task and notifies the assignee.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Status:      domain.TaskStatus(req.Status),
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate != nil {
		dueDate, err := service.ParseDate(*req.DueDate)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		params.DueDate = dueDate
	}

	view, err := h.taskService.CreateTask(r.Context(), user, params)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.TaskFromDomain(view, h.now()))
}

// handleUpdateTask applies a partial update.
// @Summary Update a task
// @Description Creator or assignee may change any field. Changing assignedTo notifies the new assignee.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.DueDate != nil {
		dueDate, err := service.ParseDate(*req.DueDate)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		patch.DueDate = dueDate
	}

	view, err := h.taskService.UpdateTask(r.Context(), user, taskID, patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TaskFromDomain(view, h.now()))
}

// handleDeleteTask deletes a task.
// @Summary Delete a task
// @Description Only the creator may delete. Notifications about the task are kept.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), user, taskID); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
