package rbac

// Booking role constants
const (
	RoleGuest = "guest"
	RoleHost  = "host"
)

// Permission constants
const (
	PermCancelBooking  = "cancel_booking"
	PermConfirmCheckIn = "confirm_check_in"
	PermViewRefund     = "view_refund"
	PermViewPayout     = "view_payout"
)

// RolePermissions defines what each booking role can do.
var RolePermissions = map[string][]string{
	RoleGuest: {
		PermCancelBooking, PermViewRefund,
	},
	RoleHost: {
		PermCancelBooking, PermConfirmCheckIn, PermViewPayout,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
