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

var userColumns = []string{
	"id", "name", "email", "password_hash", "token", "is_active", "is_deleted", "created_at",
}

// usable restricts user queries to accounts that are active and not soft-deleted.
var usable = sq.Eq{"is_active": true, "is_deleted": false}

// UserRepository is the identity store: it owns the users table.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Token,
		&user.IsActive,
		&user.IsDeleted,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// FindActiveByID retrieves an active, non-deleted user by ID.
// Ids that are not UUIDs cannot exist and resolve to ErrUserNotFound.
func (r *UserRepository) FindActiveByID(ctx context.Context, userID string) (*domain.User, error) {
	if !domain.IsID(userID) {
		return nil, domain.ErrUserNotFound
	}

	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": userID}).
		Where(usable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindActiveByID query for user %s: %w", userID, err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// FindActiveByEmail retrieves an active, non-deleted user by normalized email.
func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": domain.NormalizeEmail(email)}).
		Where(usable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindActiveByEmail query: %w", err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// IsActiveAndNotDeleted reports whether the user exists and may be used.
func (r *UserRepository) IsActiveAndNotDeleted(ctx context.Context, userID string) (bool, error) {
	_, err := r.FindActiveByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new user. The email is normalized before storage.
// Returns ErrEmailTaken when a live account already uses the address.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.Email = domain.NormalizeEmail(user.Email)

	query, args, err := psql.
		Insert("users").
		Columns("name", "email", "password_hash").
		Values(user.Name, user.Email, user.PasswordHash).
		Suffix("RETURNING id, is_active, is_deleted, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for user: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.IsDeleted, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// SetToken stores (or clears, when token is nil) the user's current session token.
func (r *UserRepository) SetToken(ctx context.Context, userID string, token *string) error {
	query, args, err := psql.
		Update("users").
		Set("token", token).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SetToken query for user %s: %w", userID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set user token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListActive returns all active, non-deleted users ordered by name.
func (r *UserRepository) ListActive(ctx context.Context) ([]*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(usable).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListActive query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}
