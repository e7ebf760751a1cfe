package auth

// Role is the caller's access level. Guests browse and book, hosts manage
// listings and calendars, admins can do both anywhere.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

var roleRanks = map[Role]int{
	RoleGuest: 1,
	RoleHost:  2,
	RoleAdmin: 3,
}

// NormalizeRole validates a role string.
func NormalizeRole(value string) (Role, bool) {
	role := Role(value)
	if _, ok := roleRanks[role]; !ok {
		return "", false
	}
	return role, true
}

// RoleAtLeast reports whether the role meets the required level. Unknown
// roles never satisfy any requirement.
func RoleAtLeast(role Role, required Role) bool {
	return roleRanks[role] >= roleRanks[required] && roleRanks[role] > 0
}
