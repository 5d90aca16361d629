package model

// Role is a closed set of staff roles.  Values are stored verbatim in the
// user_roles and user_access tables and carried in access-token claims, so
// they must never be renamed once issued.
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleEateryAdmin  Role = "EATERY_ADMIN"
	RoleKitchenAdmin Role = "KITCHEN_ADMIN"
	RoleCashier      Role = "CASHIER"
	RoleWaiter       Role = "WAITER"
)

// rolePriority orders roles from highest to lowest authority.  Both access
// gating and the privilege-escalation guard derive from this single table.
var rolePriority = []Role{
	RoleSuperAdmin,
	RoleEateryAdmin,
	RoleKitchenAdmin,
	RoleCashier,
	RoleWaiter,
}

// ParseRole converts a stored or claimed string into a Role.  The second
// return value is false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	for _, r := range rolePriority {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// priorityIndex returns the position of r in rolePriority, or -1 when the
// role is unknown.  Unknown roles rank below every known role.
func priorityIndex(r Role) int {
	for i, p := range rolePriority {
		if p == r {
			return i
		}
	}
	return -1
}

// CompareRoles returns 1 when a outranks b, -1 when b outranks a and 0 when
// they are equal.  An unknown role loses against any known role; two unknown
// roles compare equal.
func CompareRoles(a, b Role) int {
	ia, ib := priorityIndex(a), priorityIndex(b)
	if ia == -1 && ib == -1 {
		return 0
	}
	if ia == -1 {
		return -1
	}
	if ib == -1 {
		return 1
	}
	switch {
	case ia < ib:
		return 1
	case ia > ib:
		return -1
	default:
		return 0
	}
}

// HighestRole returns the highest-priority role in the set and false when
// the set contains no known role.
func HighestRole(roles []Role) (Role, bool) {
	for _, p := range rolePriority {
		for _, r := range roles {
			if r == p {
				return p, true
			}
		}
	}
	return "", false
}

// HasAnyRole reports whether actorRoles grants any of required.  SUPER_ADMIN
// always passes regardless of the required list.
func HasAnyRole(actorRoles []Role, required ...Role) bool {
	for _, r := range actorRoles {
		if r == RoleSuperAdmin {
			return true
		}
	}
	for _, want := range required {
		for _, r := range actorRoles {
			if r == want {
				return true
			}
		}
	}
	return false
}

// RoleStrings converts a role slice to plain strings for token claims.
func RoleStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// RolesFromStrings parses claim strings back into roles, dropping anything
// outside the closed set.
func RolesFromStrings(ss []string) []Role {
	out := make([]Role, 0, len(ss))
	for _, s := range ss {
		if r, ok := ParseRole(s); ok {
			out = append(out, r)
		}
	}
	return out
}
