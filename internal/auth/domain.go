package auth

import (
	"time"

	"github.com/asset-atlas/atlas/internal/rbac"
)

// User represents an authenticated user account together with its role.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	DisplayName  string
	Dept         string
	IsActive     bool
	Role         rbac.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the request-scoped view of the user for authorization.
func (u *User) Actor() *rbac.Actor {
	return &rbac.Actor{
		ID:       u.ID,
		Username: u.Username,
		IsActive: u.IsActive,
		Role:     u.Role,
	}
}
