// Package authz centralizes role checks. Callers use the capability
// predicates instead of comparing role strings at call sites.
package authz

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleSuperAdmin:
		return Role(s)
	default:
		return RoleUser
	}
}

// IsElevated reports whether the role gets the short session TTL and
// access to the admin dashboards.
func IsElevated(r Role) bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func CanManageUsers(r Role) bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func CanViewAudit(r Role) bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func CanResolveEvents(r Role) bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanAdjustRoles is reserved for the top tier; admins cannot promote
// or demote other admins.
func CanAdjustRoles(r Role) bool {
	return r == RoleSuperAdmin
}
