package users

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/models"
)

// UsersRepository defines what the app layer needs from the repository
type UsersRepository interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// App handles users business logic
type App struct {
	repo UsersRepository
}

// NewApp creates a new users App
func NewApp(repo UsersRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateUser creates a new user with validation and returns the freshly
// minted API token alongside the user. The token is only shown once.
func (a *App) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, string, error) {
	if err := a.validateUserRequest(req.Email, req.FullName, req.Role); err != nil {
		return nil, "", fmt.Errorf("validation failed: %w", err)
	}

	existingUser, err := a.repo.GetUserByEmail(ctx, req.Email)
	if err == nil && existingUser != nil {
		return nil, "", fmt.Errorf("user with email %s already exists", req.Email)
	}

	user, token, err := a.repo.CreateUser(ctx, req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Created user: %s (%s)", user.FullName, user.Role)
	return user, token, nil
}

// GetUser retrieves a user by ID
func (a *App) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to an active user
func (a *App) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	user, err := a.repo.GetUserByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return user, nil
}

// ListUsers retrieves every user account
func (a *App) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListJudges retrieves all active judges
func (a *App) ListJudges(ctx context.Context) ([]models.User, error) {
	judges, err := a.repo.ListByRole(ctx, models.UserRoleJudge)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	return judges, nil
}

// UpdateUser updates an existing user with validation
func (a *App) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	if err := a.validateUserRequest(req.Email, req.FullName, req.Role); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existingUser, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if req.Email != existingUser.Email {
		conflictUser, err := a.repo.GetUserByEmail(ctx, req.Email)
		if err == nil && conflictUser != nil {
			return nil, fmt.Errorf("user with email %s already exists", req.Email)
		}
	}

	user, err := a.repo.UpdateUser(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Printf("Updated user: %s (%s)", user.FullName, user.Role)
	return user, nil
}

// DeleteUser deletes a user by ID
func (a *App) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	if err := a.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Printf("Deleted user: %s (%s)", user.FullName, user.Role)
	return nil
}

func (a *App) validateUserRequest(email, fullName string, role models.UserRole) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("email format is invalid")
	}
	if fullName == "" {
		return fmt.Errorf("full name is required")
	}
	switch role {
	case models.UserRoleJudge, models.UserRoleAdmin, models.UserRoleSuperAdmin, models.UserRoleNotary, models.UserRoleVoter:
		return nil
	default:
		return fmt.Errorf("unknown role %q", role)
	}
}
