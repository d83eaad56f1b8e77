package domain

// Role is the access tier of a user. The set is open: new tenant-scoped tiers
// can be added without touching the access gate's predicate structure.
type Role string

const (
	// RoleFlowencyAdmin is the platform super-admin tier. It is not scoped to
	// a tenant (User.ClientID is nil for these accounts).
	RoleFlowencyAdmin Role = "flowency_admin"

	// RoleClientAdmin administers a single tenant.
	RoleClientAdmin Role = "client_admin"

	// RoleClientMember is the regular tenant-scoped tier.
	RoleClientMember Role = "client_member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleFlowencyAdmin, RoleClientAdmin, RoleClientMember:
		return true
	}
	return false
}

// IsFlowencyAdmin reports whether r is the platform super-admin tier.
func (r Role) IsFlowencyAdmin() bool { return r == RoleFlowencyAdmin }

// TenantScoped reports whether accounts with this role belong to a tenant.
func (r Role) TenantScoped() bool { return r != RoleFlowencyAdmin }

// CanModify reports whether the role may mutate tenant resources.
// Members get read-mostly access.
func (r Role) CanModify() bool {
	return r == RoleFlowencyAdmin || r == RoleClientAdmin
}
