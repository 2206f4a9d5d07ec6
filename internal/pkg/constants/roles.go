package constants

const (
	Admin   = "ADMIN"
	Manager = "MANAGER"
	Viewer  = "VIEWER"
)

// ValidRoles is the set of allowed values for Users.role and Approvals.approver_role.
var ValidRoles = []string{Viewer, Manager, Admin}

// IsValidRole returns true if role is one of the allowed enum values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
