package rbac

// Org role names. Keep these stable; they are part of the token contract.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"

	RoleSuperAdmin = "super_admin"
	// RoleSupport is the hidden role used by platform support staff.
	RoleSupport = "support"
)

// OrgRoles are the roles that may read an org's calls and leads.
var OrgRoles = []string{RoleOwner, RoleAdmin, RoleMember}

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleSupport }
