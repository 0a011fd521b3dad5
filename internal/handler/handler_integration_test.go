//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/taskdesk/internal/auth"
	"github.com/mtlprog/taskdesk/internal/handler"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
	"github.com/mtlprog/taskdesk/internal/metrics"
	"github.com/mtlprog/taskdesk/internal/repository"
	"github.com/mtlprog/taskdesk/internal/service"
	"github.com/mtlprog/taskdesk/internal/testutil"
)

// APITestSuite drives the full HTTP surface against Postgres.
type APITestSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	routes   http.Handler
	notifier *service.Notifier
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupSuite() {
	s.pool = testutil.Postgres(s.T())

	userRepo := repository.NewUserRepository(s.pool)
	taskRepo := repository.NewTaskRepository(s.pool)
	notificationRepo := repository.NewNotificationRepository(s.pool)

	tokens, err := auth.NewTokenService("api-test-secret", "taskdesk", time.Hour)
	s.Require().NoError(err)

	m := metrics.New(prometheus.NewRegistry())
	s.notifier = service.NewNotifier(notificationRepo, service.WithNotifierMetrics(m))

	s.routes = handler.New(
		s.pool,
		service.NewTaskService(taskRepo, userRepo, s.notifier, m),
		service.NewNotificationService(notificationRepo),
		service.NewAuthService(userRepo, tokens, auth.NewMemoryRevocationList()),
		m,
	).Routes()
}

func (s *APITestSuite) TearDownSuite() {
	if s.notifier != nil {
		s.notifier.Close()
	}
}

func (s *APITestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), testutil.Truncate)
	s.Require().NoError(err)
}

func (s *APITestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.routes.ServeHTTP(w, req)
	return w
}

// signUp registers and logs in a user, returning its id and token.
func (s *APITestSuite) signUp(name, email string) (string, string) {
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "s3cret-pass",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "s3cret-pass",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.UserID, resp.Token
}

func (s *APITestSuite) TestAssignmentScenario() {
	_, token1 := s.signUp("User One", "one@example.com")
	user2ID, token2 := s.signUp("User Two", "two@example.com")
	_, token3 := s.signUp("User Three", "three@example.com")

	// U1 creates a task for U2.
	w := s.do(http.MethodPost, "/api/v1/tasks", token1, map[string]string{
		"title": "Ship report", "assignedTo": user2ID,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))

	// U2 sees exactly one notification about it.
	w = s.do(http.MethodGet, "/api/v1/notifications", token2, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var inbox []dto.NotificationResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &inbox))
	s.Require().Len(inbox, 1)
	s.Equal(task.ID, inbox[0].Task)
	s.Contains(inbox[0].Message, "Ship report")

	// U3 may not touch it.
	w = s.do(http.MethodPut, "/api/v1/tasks/"+task.ID, token3, map[string]string{"title": "Hijacked"})
	s.Require().Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/tasks/"+task.ID, token3, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var unchanged dto.TaskResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &unchanged))
	s.Equal("Ship report", unchanged.Title)
	s.Equal(user2ID, unchanged.AssignedTo.ID)

	// Marking read twice succeeds both times.
	for range 2 {
		w = s.do(http.MethodGet, "/api/v1/notifications/"+inbox[0].ID+"/read", token2, nil)
		s.Require().Equal(http.StatusOK, w.Code)
	}

	// Only the creator deletes; the notification survives.
	w = s.do(http.MethodDelete, "/api/v1/tasks/"+task.ID, token2, nil)
	s.Require().Equal(http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/tasks/"+task.ID, token1, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/notifications", token2, nil)
	s.Require().Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestRegister_DuplicateEmailIsCaseInsensitive() {
	s.signUp("Ada", "ada@example.com")

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Ada Again", "email": "ADA@example.com", "password": "other-pass",
	})

	s.Equal(http.StatusConflict, w.Code)
}

func (s *APITestSuite) TestLogout() {
	_, token := s.signUp("Ada", "ada@example.com")

	w := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/auth/profile", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}
