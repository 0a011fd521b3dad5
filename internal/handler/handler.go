package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/taskdesk/docs" // Register swagger spec
	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
	"github.com/mtlprog/taskdesk/internal/metrics"
	"github.com/mtlprog/taskdesk/internal/middleware"
	"github.com/mtlprog/taskdesk/internal/service"
	"github.com/mtlprog/taskdesk/internal/static"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	db                  Pinger
	taskService         *service.TaskService
	notificationService *service.NotificationService
	authService         *service.AuthService
	authMiddleware      *middleware.AuthMiddleware
	metrics             *metrics.Metrics
	now                 func() time.Time
}

// New creates a new Handler instance with all dependencies. m may be nil.
func New(
	db Pinger,
	taskService *service.TaskService,
	notificationService *service.NotificationService,
	authService *service.AuthService,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		db:                  db,
		taskService:         taskService,
		notificationService: notificationService,
		authService:         authService,
		authMiddleware:      middleware.NewAuthMiddleware(authService),
		metrics:             m,
		now:                 time.Now,
	}
}

// Routes returns the complete HTTP handler with request observation applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return middleware.Observe(h.metrics, mux)
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Infrastructure
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api.md", h.handleAPIGuide)
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", h.handleLogin)
	mux.Handle("POST /api/v1/auth/logout", h.authenticated(h.handleLogout))
	mux.Handle("GET /api/v1/auth/profile", h.authenticated(h.handleProfile))
	mux.Handle("GET /api/v1/auth/users", h.authenticated(h.handleListUsers))

	// Tasks
	mux.Handle("GET /api/v1/tasks", h.authenticated(h.handleListTasks))
	mux.Handle("GET /api/v1/tasks/dashboard", h.authenticated(h.handleDashboard))
	mux.Handle("GET /api/v1/tasks/search", h.authenticated(h.handleSearchTasks))
	mux.Handle("GET /api/v1/tasks/{id}", h.authenticated(h.handleGetTask))
	mux.Handle("POST /api/v1/tasks", h.authenticated(h.handleCreateTask))
	mux.Handle("PUT /api/v1/tasks/{id}", h.authenticated(h.handleUpdateTask))
	mux.Handle("DELETE /api/v1/tasks/{id}", h.authenticated(h.handleDeleteTask))

	// Notifications
	mux.Handle("GET /api/v1/notifications", h.authenticated(h.handleListNotifications))
	mux.Handle("GET /api/v1/notifications/{id}/read", h.authenticated(h.handleMarkNotificationRead))
}

func (h *Handler) authenticated(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /healthz [get]
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		slog.Error("database health check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unavailable")
		return
	}

	respondJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// handleAPIGuide serves the embedded API guide.
func (h *Handler) handleAPIGuide(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(static.APIGuide)); err != nil {
		slog.Error("failed to write API guide", "error", err)
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	dto.WriteError(w, status, code, message)
}

// respondDomainError maps a service error to its HTTP form.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// decodeJSON reads the request body into dst and validates it.
// Returns false if the body was rejected (error already sent to client).
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	if err := dto.ValidateStruct(dst); err != nil {
		respondDomainError(w, err)
		return false
	}
	return true
}

// extractID extracts and validates a UUID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidRequest, name+" id is required")
		return "", false
	}

	if !domain.IsID(id) {
		respondError(w, http.StatusBadRequest, dto.ErrCodeInvalidRequest, name+" id must be a valid UUID")
		return "", false
	}

	return id, true
}
