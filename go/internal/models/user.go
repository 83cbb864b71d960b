package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role assigned to a platform user
type UserRole string

const (
	UserRoleJudge      UserRole = "judge"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "superadmin"
	UserRoleNotary     UserRole = "notary"
	UserRoleVoter      UserRole = "user"
)

// User represents a platform user (judge, notary, admin or public voter)
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
