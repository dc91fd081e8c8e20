package auth

import "errors"

// Closed role enumeration. Authorization decisions go through the
// capability sets below, never through ad hoc string checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleDev   = "dev"
)

// Capabilities the route layer checks. The :self variants are scoped
// by the caller's own id in the handlers, not by middleware.
const (
	PermUsersRead         = "users:read"
	PermUsersWrite        = "users:write"
	PermUsersDelete       = "users:delete"
	PermUsersReadSelf     = "users:read:self"
	PermUsersWriteSelf    = "users:write:self"
	PermCoursesRead       = "courses:read"
	PermCoursesWrite      = "courses:write"
	PermCoursesDelete     = "courses:delete"
	PermPurchasesRead     = "purchases:read"
	PermPurchasesSelf     = "purchases:create:self"
	PermPurchasesReadSelf = "purchases:read:self"
	PermEntitlementsGrant = "entitlements:grant"
)

// Permissions per role.
var Permissions = map[string][]string{
	RoleAdmin: {
		PermUsersRead,
		PermUsersWrite,
		PermUsersDelete,
		PermCoursesRead,
		PermCoursesWrite,
		PermCoursesDelete,
		PermPurchasesRead,
		PermEntitlementsGrant,
	},
	RoleDev: {
		PermUsersRead,
		PermCoursesRead,
		PermCoursesWrite,
		PermPurchasesRead,
		PermEntitlementsGrant,
	},
	RoleUser: {
		PermUsersReadSelf,
		PermUsersWriteSelf,
		PermCoursesRead,
		PermPurchasesSelf,
		PermPurchasesReadSelf,
	},
}

// HasPermission reports whether the role grants the permission.
func HasPermission(role, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidateRole rejects anything outside the closed enumeration.
func ValidateRole(role string) error {
	switch role {
	case RoleUser, RoleAdmin, RoleDev:
		return nil
	default:
		return errors.New("invalid role")
	}
}
