package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mtlprog/taskdesk/internal/auth"
	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/handler"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
	"github.com/mtlprog/taskdesk/internal/metrics"
	"github.com/mtlprog/taskdesk/internal/repository"
	"github.com/mtlprog/taskdesk/internal/service"
	"github.com/mtlprog/taskdesk/internal/service/mocks"
)

const (
	user1ID = "00000000-0000-0000-0000-000000000011"
	user2ID = "00000000-0000-0000-0000-000000000012"
	user3ID = "00000000-0000-0000-0000-000000000013"
	taskID  = "00000000-0000-0000-0000-0000000000a1"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

type HandlerTestSuite struct {
	suite.Suite
	tasks         *mocks.MockTaskStore
	users         *mocks.MockUserStore
	notifications *mocks.MockNotificationStore
	tokens        *auth.TokenService
	routes        http.Handler
	pinger        *fakePinger

	// Test fixtures
	user1      *domain.User
	user2      *domain.User
	user3      *domain.User
	user1Token string
	user3Token string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.tasks = mocks.NewMockTaskStore(ctrl)
	s.users = mocks.NewMockUserStore(ctrl)
	s.notifications = mocks.NewMockNotificationStore(ctrl)
	s.pinger = &fakePinger{}

	var err error
	s.tokens, err = auth.NewTokenService("handler-test-secret", "taskdesk", time.Hour)
	s.Require().NoError(err)

	m := metrics.New(prometheus.NewRegistry())
	taskService := service.NewTaskService(s.tasks, s.users, service.NewNotifier(s.notifications, service.WithNotifierMetrics(m)), m)
	notificationService := service.NewNotificationService(s.notifications)
	authService := service.NewAuthService(s.users, s.tokens, auth.NewMemoryRevocationList())

	s.routes = handler.New(s.pinger, taskService, notificationService, authService, m).Routes()

	s.user1 = &domain.User{ID: user1ID, Name: "User One", Email: "one@example.com", IsActive: true}
	s.user2 = &domain.User{ID: user2ID, Name: "User Two", Email: "two@example.com", IsActive: true}
	s.user3 = &domain.User{ID: user3ID, Name: "User Three", Email: "three@example.com", IsActive: true}

	known := map[string]*domain.User{user1ID: s.user1, user2ID: s.user2, user3ID: s.user3}
	s.users.EXPECT().FindActiveByID(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(_ context.Context, id string) (*domain.User, error) {
			if u, ok := known[id]; ok {
				return u, nil
			}
			return nil, domain.ErrUserNotFound
		})

	s.user1Token = s.issue(user1ID)
	s.user3Token = s.issue(user3ID)
}

func (s *HandlerTestSuite) issue(userID string) string {
	token, _, err := s.tokens.Issue(userID)
	s.Require().NoError(err)
	return token
}

func (s *HandlerTestSuite) storedTask() *domain.Task {
	return &domain.Task{
		ID:         taskID,
		Title:      "Ship report",
		Priority:   domain.TaskPriorityMedium,
		Status:     domain.TaskStatusPending,
		CreatedBy:  user1ID,
		AssignedTo: user2ID,
	}
}

func (s *HandlerTestSuite) storedView() *domain.TaskView {
	return &domain.TaskView{
		Task:     s.storedTask(),
		Creator:  s.user1.Summary(),
		Assignee: s.user2.Summary(),
	}
}

// Helper to make authenticated request
func (s *HandlerTestSuite) makeRequest(method, path, token string, body any) *httptest.ResponseRecorder {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		s.Require().NoError(err)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.routes.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decodeError(w *httptest.ResponseRecorder) dto.ErrorResponse {
	var resp dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// TestCreateTask_NotifiesAssignee: U1 creates "Ship report" for U2.
func (s *HandlerTestSuite) TestCreateTask_NotifiesAssignee() {
	s.users.EXPECT().IsActiveAndNotDeleted(gomock.Any(), user2ID).Return(true, nil)
	s.tasks.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			task.ID = taskID
			return task, nil
		})
	s.notifications.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, n *domain.Notification) error {
			s.Equal(user2ID, n.RecipientID)
			s.Equal(user1ID, n.SenderID)
			s.Equal(taskID, n.TaskID)
			s.Contains(n.Message, "Ship report")
			return nil
		})
	s.tasks.EXPECT().GetView(gomock.Any(), taskID).Return(s.storedView(), nil)

	w := s.makeRequest(http.MethodPost, "/api/v1/tasks", s.user1Token, map[string]any{
		"title":      "Ship report",
		"assignedTo": user2ID,
		"dueDate":    "2030-01-15",
		"priority":   "high",
	})

	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.TaskResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(taskID, resp.ID)
	s.Equal("User One", resp.CreatedBy.Name)
	s.Equal("two@example.com", resp.AssignedTo.Email)
}

// TestUpdateTask_OutsiderForbidden: U3 is neither creator nor assignee.
func (s *HandlerTestSuite) TestUpdateTask_OutsiderForbidden() {
	s.tasks.EXPECT().GetByID(gomock.Any(), taskID).Return(s.storedTask(), nil)

	w := s.makeRequest(http.MethodPut, "/api/v1/tasks/"+taskID, s.user3Token, map[string]any{
		"title": "Hijacked",
	})

	s.Require().Equal(http.StatusForbidden, w.Code)
	s.Equal("INSUFFICIENT_ACCESS", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestCreateTask_UnknownAssignee() {
	s.users.EXPECT().IsActiveAndNotDeleted(gomock.Any(), user3ID).Return(false, nil)

	w := s.makeRequest(http.MethodPost, "/api/v1/tasks", s.user1Token, map[string]any{
		"title":      "Ship report",
		"assignedTo": user3ID,
	})

	s.Require().Equal(http.StatusNotFound, w.Code)
	s.Equal("USER_NOT_FOUND", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestCreateTask_Validation() {
	cases := map[string]map[string]any{
		"missing title": {"assignedTo": user2ID},
		"bad priority":  {"title": "Ship report", "assignedTo": user2ID, "priority": "urgent"},
		"bad due date":  {"title": "Ship report", "assignedTo": user2ID, "dueDate": "soon"},
		"blank title":   {"title": "  ", "assignedTo": user2ID},
	}

	for name, body := range cases {
		s.Run(name, func() {
			w := s.makeRequest(http.MethodPost, "/api/v1/tasks", s.user1Token, body)
			s.Require().Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
			s.Equal("VALIDATION_ERROR", s.decodeError(w).Error.Code)
		})
	}
}

func (s *HandlerTestSuite) TestCreateTask_InvalidJSON() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader([]byte("{")))
	req.Header.Set("Authorization", "Bearer "+s.user1Token)
	w := httptest.NewRecorder()

	s.routes.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestAuthentication() {
	s.Run("missing header", func() {
		w := s.makeRequest(http.MethodGet, "/api/v1/tasks", "", nil)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("garbage token", func() {
		w := s.makeRequest(http.MethodGet, "/api/v1/tasks", "not-a-jwt", nil)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("unknown user", func() {
		w := s.makeRequest(http.MethodGet, "/api/v1/tasks", s.issue("00000000-0000-0000-0000-000000000099"), nil)
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *HandlerTestSuite) TestGetTask() {
	s.Run("malformed id", func() {
		w := s.makeRequest(http.MethodGet, "/api/v1/tasks/not-a-uuid", s.user1Token, nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("urn form", func() {
		w := s.makeRequest(http.MethodGet, "/api/v1/tasks/urn:uuid:"+taskID, s.user1Token, nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("not found", func() {
		s.tasks.EXPECT().GetView(gomock.Any(), taskID).Return(nil, domain.ErrTaskNotFound)

		w := s.makeRequest(http.MethodGet, "/api/v1/tasks/"+taskID, s.user1Token, nil)
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal("TASK_NOT_FOUND", s.decodeError(w).Error.Code)
	})

	s.Run("found", func() {
		s.tasks.EXPECT().GetView(gomock.Any(), taskID).Return(s.storedView(), nil)

		w := s.makeRequest(http.MethodGet, "/api/v1/tasks/"+taskID, s.user3Token, nil)
		s.Equal(http.StatusOK, w.Code)
	})
}

func (s *HandlerTestSuite) TestListTasks_StorageFailureIsGeneric() {
	s.tasks.EXPECT().Search(gomock.Any(), repository.TaskFilters{}).Return(nil, errors.New("relation tasks does not exist"))

	w := s.makeRequest(http.MethodGet, "/api/v1/tasks", s.user1Token, nil)

	s.Require().Equal(http.StatusInternalServerError, w.Code)
	resp := s.decodeError(w)
	s.Equal("INTERNAL_ERROR", resp.Error.Code)
	s.NotContains(resp.Error.Message, "relation")
}

func (s *HandlerTestSuite) TestSearchTasks() {
	s.Run("filters are parsed", func() {
		s.tasks.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, f repository.TaskFilters) ([]*domain.TaskView, error) {
				s.Equal("report", f.Search)
				s.Equal(domain.TaskStatusPending, *f.Status)
				s.Equal(domain.TaskPriorityHigh, *f.Priority)
				s.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *f.DueDateFrom)
				s.Nil(f.DueDateTo)
				return []*domain.TaskView{s.storedView()}, nil
			})

		w := s.makeRequest(http.MethodGet,
			"/api/v1/tasks/search?search=report&status=pending&priority=high&dueDateFrom=2026-01-01",
			s.user1Token, nil)

		s.Require().Equal(http.StatusOK, w.Code)
		var resp []dto.TaskResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Len(resp, 1)
	})

	s.Run("bad date", func() {
		w := s.makeRequest(http.MethodGet, "/api/v1/tasks/search?dueDateTo=31/12/2026", s.user1Token, nil)
		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("bad status", func() {
		w := s.makeRequest(http.MethodGet, "/api/v1/tasks/search?status=done", s.user1Token, nil)
		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("no match is an empty array", func() {
		s.tasks.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]*domain.TaskView{}, nil)

		w := s.makeRequest(http.MethodGet, "/api/v1/tasks/search?search=nothing", s.user1Token, nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`[]`, w.Body.String())
	})
}

func (s *HandlerTestSuite) TestDashboard_EmptyBuckets() {
	s.tasks.EXPECT().Search(gomock.Any(), gomock.Any()).Times(4).Return([]*domain.TaskView{}, nil)

	w := s.makeRequest(http.MethodGet, "/api/v1/tasks/dashboard", s.user3Token, nil)

	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"assignedTasks":[],"createdTasks":[],"overdueTasks":[],"completedTask":[]}`, w.Body.String())
}

func (s *HandlerTestSuite) TestDeleteTask() {
	s.Run("assignee forbidden", func() {
		s.tasks.EXPECT().GetByID(gomock.Any(), taskID).Return(s.storedTask(), nil)

		w := s.makeRequest(http.MethodDelete, "/api/v1/tasks/"+taskID, s.issue(user2ID), nil)
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("creator deletes", func() {
		s.tasks.EXPECT().GetByID(gomock.Any(), taskID).Return(s.storedTask(), nil)
		s.tasks.EXPECT().Delete(gomock.Any(), taskID).Return(nil)

		w := s.makeRequest(http.MethodDelete, "/api/v1/tasks/"+taskID, s.user1Token, nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"success":true}`, w.Body.String())
	})
}

func (s *HandlerTestSuite) TestNotifications() {
	notificationID := "00000000-0000-0000-0000-0000000000b1"

	s.Run("empty inbox", func() {
		s.notifications.EXPECT().ListByRecipient(gomock.Any(), user3ID).Return([]*domain.Notification{}, nil)

		w := s.makeRequest(http.MethodGet, "/api/v1/notifications", s.user3Token, nil)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("mark read", func() {
		s.notifications.EXPECT().MarkRead(gomock.Any(), notificationID).Return(&domain.Notification{
			ID: notificationID, RecipientID: user3ID, SenderID: user1ID, TaskID: taskID, IsRead: true,
		}, nil)

		w := s.makeRequest(http.MethodGet, "/api/v1/notifications/"+notificationID+"/read", s.user3Token, nil)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp dto.MarkReadResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("Marked as read", resp.Message)
		s.True(resp.UpdatedNotification.IsRead)
	})

	s.Run("mark read unknown", func() {
		s.notifications.EXPECT().MarkRead(gomock.Any(), notificationID).Return(nil, domain.ErrNotificationNotFound)

		w := s.makeRequest(http.MethodGet, "/api/v1/notifications/"+notificationID+"/read", s.user3Token, nil)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *HandlerTestSuite) TestLogoutRevokesToken() {
	s.users.EXPECT().SetToken(gomock.Any(), user3ID, gomock.Nil()).Return(nil)

	w := s.makeRequest(http.MethodPost, "/api/v1/auth/logout", s.user3Token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.makeRequest(http.MethodGet, "/api/v1/auth/profile", s.user3Token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestRegister_Conflict() {
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrEmailTaken)

	w := s.makeRequest(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "s3cret",
	})

	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestHealthz() {
	w := s.makeRequest(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)

	s.pinger.err = errors.New("connection refused")
	w = s.makeRequest(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlerTestSuite) TestAPIGuide() {
	w := s.makeRequest(http.MethodGet, "/api.md", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "/api/v1/tasks")
}

func (s *HandlerTestSuite) TestSwaggerDoc() {
	w := s.makeRequest(http.MethodGet, "/swagger/doc.json", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"/tasks/{id}"`)
	s.Contains(w.Body.String(), `"basePath": "/api/v1"`)
}

func (s *HandlerTestSuite) TestMetricsEndpoint() {
	w := s.makeRequest(http.MethodGet, "/metrics", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "go_goroutines")
}
