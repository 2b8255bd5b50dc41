package rbac

// Capability is a single permission bit. Capabilities are independent:
// holding one never implies another.
type Capability int

const (
	// CapCreateAsset allows creating asset records.
	CapCreateAsset Capability = iota
	// CapReadAsset allows reading and listing asset records.
	CapReadAsset
	// CapUpdateAsset allows updating asset records.
	CapUpdateAsset
	// CapDeleteAsset allows deleting asset records.
	CapDeleteAsset
	// CapManageUsers allows user and role administration.
	CapManageUsers
)

// String returns the storage-facing name of the capability.
func (c Capability) String() string {
	switch c {
	case CapCreateAsset:
		return "create_asset"
	case CapReadAsset:
		return "read_asset"
	case CapUpdateAsset:
		return "update_asset"
	case CapDeleteAsset:
		return "delete_asset"
	case CapManageUsers:
		return "manage_users"
	}
	return "unknown"
}

// CapabilitySet holds the five independent flags attached to a role.
type CapabilitySet struct {
	CreateAsset bool `json:"can_create_asset"`
	ReadAsset   bool `json:"can_read_asset"`
	UpdateAsset bool `json:"can_update_asset"`
	DeleteAsset bool `json:"can_delete_asset"`
	ManageUsers bool `json:"can_manage_users"`
}

// Has reports whether the set grants the capability.
func (s CapabilitySet) Has(c Capability) bool {
	switch c {
	case CapCreateAsset:
		return s.CreateAsset
	case CapReadAsset:
		return s.ReadAsset
	case CapUpdateAsset:
		return s.UpdateAsset
	case CapDeleteAsset:
		return s.DeleteAsset
	case CapManageUsers:
		return s.ManageUsers
	}
	return false
}

// Role is a named, fixed bundle of capabilities. The capability set is
// seeded at first boot and never restructured through the API.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"role_name"`
	CapabilitySet
}

// Actor is the authenticated user attached to the current request. The
// role is loaded fresh from storage on every request, so a changed
// capability set takes effect on the next request without token churn.
type Actor struct {
	ID       int64
	Username string
	IsActive bool
	Role     Role
}
