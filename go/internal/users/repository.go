package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownjudge/pageant/go/internal/models"
)

// Repository implements user data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new users repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, full_name, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a new user with a fresh API token
func (r *Repository) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, string, error) {
	token := uuid.NewString()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, full_name, role, api_token, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING `+userColumns,
		uuid.New(), req.Email, req.FullName, req.Role, token)

	u, err := scanUser(row)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	return u, token, nil
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetUserByToken resolves an API bearer token to an active user
func (r *Repository) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE api_token = $1 AND is_active`, token)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by token: %w", err)
	}
	return u, nil
}

// ListUsers retrieves every user account, newest first
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListByRole retrieves all active users carrying one role
func (r *Repository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 AND is_active ORDER BY full_name`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser updates an existing user
func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $2, full_name = $3, role = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, req.Email, req.FullName, req.Role, req.IsActive)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// DeleteUser deletes a user by ID
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
