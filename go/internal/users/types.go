package users

import "github.com/crownjudge/pageant/go/internal/models"

// CreateUserRequest represents the data needed to create a new user
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"full_name" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required"`
}

// UpdateUserRequest represents the data that can be updated for a user
type UpdateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"full_name" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required"`
	IsActive bool            `json:"is_active"`
}
