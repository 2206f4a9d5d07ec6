package constants

const (
	ViewData            = "view_data"
	ManageOpportunities = "manage_opportunities"
	ManagePricing       = "manage_pricing"
	ManageApprovals     = "manage_approvals"
	ManageFx            = "manage_fx"
	ManageUsers         = "manage_users"
)

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:            {Viewer, Manager, Admin},
	ManageOpportunities: {Manager, Admin},
	ManagePricing:       {Manager, Admin},
	ManageApprovals:     {Manager, Admin},
	ManageFx:            {Admin},
	ManageUsers:         {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
