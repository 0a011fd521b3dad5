package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtlprog/taskdesk/internal/auth"
	"github.com/mtlprog/taskdesk/internal/domain"
)

// RegisterParams is the input of Register.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// AuthService registers users and manages their sessions.
type AuthService struct {
	users   UserStore
	tokens  *auth.TokenService
	revoked auth.RevocationList
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *auth.TokenService, revoked auth.RevocationList) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		now:     time.Now,
	}
}

// Register creates an active account with a hashed password.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	name := strings.TrimSpace(params.Name)
	email := domain.NormalizeEmail(params.Email)
	if name == "" || email == "" || params.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID)

	return user, nil
}

// Login checks the credentials and issues a token, which becomes the user's
// current session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindActiveByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", err
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.SetToken(ctx, user.ID, &token); err != nil {
		return nil, "", fmt.Errorf("store session token: %w", err)
	}
	user.Token = &token

	slog.Info("user logged in", "user_id", user.ID)

	return user, token, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, nil, domain.ErrTokenRevoked
	}

	user, err := s.users.FindActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("%w: user %s is not active", domain.ErrInvalidToken, claims.UserID)
		}
		return nil, nil, err
	}

	return user, claims, nil
}

// Logout revokes the token until it would have expired and clears the stored session.
func (s *AuthService) Logout(ctx context.Context, caller *domain.User, claims *auth.Claims) error {
	if err := s.revoked.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	if err := s.users.SetToken(ctx, caller.ID, nil); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}

	slog.Info("user logged out", "user_id", caller.ID)

	return nil
}

// ListUsers returns every active user. Returns ErrNoActiveUsers when there are none.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrNoActiveUsers
	}
	return users, nil
}
