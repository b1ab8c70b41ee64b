package domain

// Role identifiers. The numeric values are stored on users and referenced
// by the authorization policies.
const (
	RoleSuperAdmin   = 1
	RoleCentralAdmin = 2
	RoleBranchAdmin  = 3
	RoleEncoder      = 4
)

func ValidRole(roleID int) bool {
	switch roleID {
	case RoleSuperAdmin, RoleCentralAdmin, RoleBranchAdmin, RoleEncoder:
		return true
	}
	return false
}

// RoleRequiresBranch reports whether accounts with the role must be
// assigned to a branch.
func RoleRequiresBranch(roleID int) bool {
	return roleID == RoleBranchAdmin || roleID == RoleEncoder
}

func RoleLabel(roleID int) string {
	switch roleID {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleCentralAdmin:
		return "Central Admin"
	case RoleBranchAdmin:
		return "Branch Admin"
	case RoleEncoder:
		return "Encoder"
	}
	return "Unknown"
}
