package domain

import "fmt"

// Role identifies one of the fixed access levels the service issues tokens
// for. The set is closed; there is no user database behind it.
type Role string

const (
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
	RoleUpload Role = "upload"
	RoleCron   Role = "cron"
)

// Roles lists every known role.
var Roles = []Role{RoleStaff, RoleAdmin, RoleUpload, RoleCron}

// ParseRole validates a role name from a URL path or request body.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStaff, RoleAdmin, RoleUpload, RoleCron:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// Accepted returns the set of roles whose tokens satisfy a guard for r.
// An admin token is accepted anywhere a staff or upload token is, since the
// admin credential is strictly stronger. Admin and cron guards accept only
// their own tokens: admin because nothing outranks it, cron so that a leaked
// automation token never widens into interactive access and vice versa.
func (r Role) Accepted() []string {
	switch r {
	case RoleStaff:
		return []string{string(RoleStaff), string(RoleAdmin)}
	case RoleUpload:
		return []string{string(RoleUpload), string(RoleAdmin)}
	default:
		return []string{string(r)}
	}
}
