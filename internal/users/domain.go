package users

import (
	"time"

	"github.com/asset-atlas/atlas/internal/rbac"
)

// User represents a user account for management. Accounts are never hard
// deleted; deactivation flips IsActive off.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Dept        string    `json:"dept"`
	IsActive    bool      `json:"is_active"`
	Role        rbac.Role `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput carries the fields accepted when creating an account. The
// plaintext password never reaches storage; only its hash does.
type CreateInput struct {
	Username    string
	Password    string
	DisplayName string
	Dept        string
	RoleID      int64
}

// UpdateInput carries one optional field per mutable column.
type UpdateInput struct {
	DisplayName *string `json:"display_name"`
	Dept        *string `json:"dept"`
	RoleID      *int64  `json:"role_id"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}

// IsEmpty reports whether no field is set.
func (in UpdateInput) IsEmpty() bool {
	return in.DisplayName == nil && in.Dept == nil && in.RoleID == nil &&
		in.IsActive == nil && in.Password == nil
}

// Changes returns the provided fields for the audit detail. The password
// is flagged as changed but neither the plaintext nor the hash is logged.
func (in UpdateInput) Changes() map[string]any {
	changes := make(map[string]any)
	if in.DisplayName != nil {
		changes["display_name"] = *in.DisplayName
	}
	if in.Dept != nil {
		changes["dept"] = *in.Dept
	}
	if in.RoleID != nil {
		changes["role_id"] = *in.RoleID
	}
	if in.IsActive != nil {
		changes["is_active"] = *in.IsActive
	}
	if in.Password != nil {
		changes["password"] = "[redacted]"
	}
	return changes
}
